// Package postgres persists evaluation requests in PostgreSQL. The partial
// unique index on active pairs and conditional UPDATEs carry the concurrency
// guarantees; see schema.sql.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"peakform/internal/evaluation/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

const uniqueViolation = "23505"

// Store is the PostgreSQL-backed evaluation request store.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the evaluation schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply evaluation schema: %w", err)
	}
	return nil
}

const requestColumns = `
	id, seeker_id, guide_id, status, message, moderator_message,
	scheduled_date, scheduled_time, location, equipment, verification_code,
	created_at, updated_at`

func (s *Store) CreateIfNoActive(ctx context.Context, req *models.EvaluationRequest) error {
	query := `
		INSERT INTO evaluation_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(req.ID), uuid.UUID(req.SeekerID), uuid.UUID(req.GuideID),
		string(req.Status), req.Message, req.ModeratorMessage,
		nullDate(req.ScheduledDate), req.ScheduledTime, req.Location,
		pq.Array(equipmentOrEmpty(req.Equipment)), req.VerificationCode,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create evaluation request: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, evalID id.EvaluationID) (*models.EvaluationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM evaluation_requests WHERE id = $1`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, uuid.UUID(evalID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find evaluation request by id: %w", err)
	}
	return req, nil
}

func (s *Store) FindActiveByPair(ctx context.Context, seekerID, guideID id.UserID) (*models.EvaluationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM evaluation_requests
		WHERE seeker_id = $1 AND guide_id = $2 AND status IN ('PENDING', 'ACCEPTED')
	`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, uuid.UUID(seekerID), uuid.UUID(guideID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active request for pair: %w", err)
	}
	return req, nil
}

func (s *Store) LatestRejectionAt(ctx context.Context, seekerID, guideID id.UserID) (time.Time, error) {
	query := `
		SELECT updated_at
		FROM evaluation_requests
		WHERE seeker_id = $1 AND guide_id = $2 AND status = 'REJECTED'
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var rejectedAt time.Time
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(seekerID), uuid.UUID(guideID)).Scan(&rejectedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, sentinel.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("find latest rejection for pair: %w", err)
	}
	return rejectedAt, nil
}

func (s *Store) ResolveFromPending(ctx context.Context, req *models.EvaluationRequest) error {
	query := `
		UPDATE evaluation_requests
		SET status = $2, moderator_message = $3, scheduled_date = $4,
		    scheduled_time = $5, location = $6, equipment = $7,
		    verification_code = $8, updated_at = $9
		WHERE id = $1 AND status = 'PENDING'
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(req.ID), string(req.Status), req.ModeratorMessage,
		nullDate(req.ScheduledDate), req.ScheduledTime, req.Location,
		pq.Array(equipmentOrEmpty(req.Equipment)), req.VerificationCode,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("resolve evaluation request: %w", err)
	}
	return s.checkTransition(ctx, result, req.ID, sentinel.ErrInvalidState)
}

func (s *Store) FindByGuideAndCode(ctx context.Context, guideID id.UserID, code string) (*models.EvaluationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM evaluation_requests
		WHERE guide_id = $1 AND verification_code = $2 AND status = 'ACCEPTED'
	`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, uuid.UUID(guideID), code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find request by guide and code: %w", err)
	}
	return req, nil
}

func (s *Store) MarkVerified(ctx context.Context, evalID id.EvaluationID, now time.Time) error {
	query := `
		UPDATE evaluation_requests
		SET status = 'VERIFIED', updated_at = $2
		WHERE id = $1 AND status = 'ACCEPTED'
	`
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(evalID), now)
	if err != nil {
		return fmt.Errorf("mark evaluation request verified: %w", err)
	}
	return s.checkTransition(ctx, result, evalID, sentinel.ErrAlreadyUsed)
}

func (s *Store) ListBySeeker(ctx context.Context, seekerID id.UserID) ([]*models.EvaluationRequest, error) {
	return s.listByColumn(ctx, "seeker_id", seekerID)
}

func (s *Store) ListByGuide(ctx context.Context, guideID id.UserID) ([]*models.EvaluationRequest, error) {
	return s.listByColumn(ctx, "guide_id", guideID)
}

func (s *Store) listByColumn(ctx context.Context, column string, userID id.UserID) ([]*models.EvaluationRequest, error) {
	// column is one of two literals chosen above, never caller input.
	query := `
		SELECT ` + requestColumns + `
		FROM evaluation_requests
		WHERE ` + column + ` = $1 AND status IN ('PENDING', 'ACCEPTED', 'REJECTED')
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list evaluation requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.EvaluationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evaluation requests: %w", err)
	}
	return requests, nil
}

func (s *Store) DeleteByCode(ctx context.Context, guideID id.UserID, code string, seekerID *id.UserID) (int64, error) {
	query := `
		DELETE FROM evaluation_requests
		WHERE guide_id = $1 AND verification_code = $2 AND status = 'ACCEPTED'
		  AND ($3::uuid IS NULL OR seeker_id = $3)
	`
	var seekerArg any
	if seekerID != nil {
		seekerArg = uuid.UUID(*seekerID)
	}
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(guideID), code, seekerArg)
	if err != nil {
		return 0, fmt.Errorf("delete request by code: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete request by code: %w", err)
	}
	return removed, nil
}

// checkTransition distinguishes "row gone" from "conditional write lost" when
// an UPDATE matched nothing.
func (s *Store) checkTransition(ctx context.Context, result sql.Result, evalID id.EvaluationID, lost error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transition result: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM evaluation_requests WHERE id = $1)`,
		uuid.UUID(evalID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check transition result: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return lost
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.EvaluationRequest, error) {
	var (
		req           models.EvaluationRequest
		evalID        uuid.UUID
		seekerID      uuid.UUID
		guideID       uuid.UUID
		status        string
		scheduledDate sql.NullTime
		equipment     []string
	)
	err := row.Scan(
		&evalID, &seekerID, &guideID, &status, &req.Message, &req.ModeratorMessage,
		&scheduledDate, &req.ScheduledTime, &req.Location, pq.Array(&equipment),
		&req.VerificationCode, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.ID = id.EvaluationID(evalID)
	req.SeekerID = id.UserID(seekerID)
	req.GuideID = id.UserID(guideID)
	req.Status = models.Status(status)
	if scheduledDate.Valid {
		req.ScheduledDate = models.DateOf(scheduledDate.Time)
	}
	if len(equipment) > 0 {
		req.Equipment = equipment
	}
	return &req, nil
}

func nullDate(d models.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.In(time.UTC), Valid: true}
}

func equipmentOrEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
