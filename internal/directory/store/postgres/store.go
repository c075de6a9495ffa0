// Package postgres persists directory profiles in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"peakform/internal/directory"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

// Store is the PostgreSQL-backed directory.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed directory store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the directory schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply directory schema: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, p *directory.Profile) error {
	query := `
		INSERT INTO athlete_profiles (
			user_id, display_name, handle, primary_sport, avatar_url,
			rank, location, gender, approved_guide, latitude, longitude, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			handle = EXCLUDED.handle,
			primary_sport = EXCLUDED.primary_sport,
			avatar_url = EXCLUDED.avatar_url,
			rank = EXCLUDED.rank,
			location = EXCLUDED.location,
			gender = EXCLUDED.gender,
			approved_guide = EXCLUDED.approved_guide,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.UserID), p.DisplayName, p.Handle, p.PrimarySport, p.AvatarURL,
		p.Rank, p.Location, p.Gender, p.ApprovedGuide, p.Latitude, p.Longitude,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *Store) IsApprovedGuide(ctx context.Context, userID id.UserID) (bool, error) {
	var approved bool
	err := s.db.QueryRowContext(ctx,
		`SELECT approved_guide FROM athlete_profiles WHERE user_id = $1`,
		uuid.UUID(userID),
	).Scan(&approved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check guide credential: %w", err)
	}
	return approved, nil
}

func (s *Store) Snapshot(ctx context.Context, userID id.UserID) (*directory.AthleteSnapshot, error) {
	var (
		uid  uuid.UUID
		snap directory.AthleteSnapshot
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, handle, primary_sport, avatar_url, rank, location, gender
		FROM athlete_profiles WHERE user_id = $1`,
		uuid.UUID(userID),
	).Scan(&uid, &snap.DisplayName, &snap.Handle, &snap.PrimarySport,
		&snap.AvatarURL, &snap.Rank, &snap.Location, &snap.Gender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap.UserID = id.UserID(uid)
	return &snap, nil
}

func (s *Store) Candidates(ctx context.Context) ([]directory.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, display_name, primary_sport, latitude, longitude
		FROM athlete_profiles
		WHERE approved_guide
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []directory.Candidate
	for rows.Next() {
		var (
			uid      uuid.UUID
			c        directory.Candidate
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&uid, &c.DisplayName, &c.PrimarySport, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.UserID = id.UserID(uid)
		if lat.Valid {
			c.Latitude = &lat.Float64
		}
		if lon.Valid {
			c.Longitude = &lon.Float64
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}
