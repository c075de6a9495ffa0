// Package directory exposes guide credentials and athlete profiles to the
// evaluation workflow. It is a thin read model over the platform's user data:
// the ledger asks whether a user is an approved guide, the redeemer fetches a
// seeker's public snapshot, and the proximity matcher pulls the candidate pool.
package directory

import (
	"context"

	id "peakform/pkg/domain"
)

// AthleteSnapshot is the read-only slice of a seeker's public profile returned
// to a guide at redemption time.
type AthleteSnapshot struct {
	UserID       id.UserID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Handle       string    `json:"handle"`
	PrimarySport string    `json:"primary_sport"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Rank         string    `json:"rank,omitempty"`
	Location     string    `json:"location,omitempty"`
	Gender       string    `json:"gender,omitempty"`
}

// Candidate is an approved guide eligible for proximity matching. Coordinates
// are optional; the matcher skips candidates without them.
type Candidate struct {
	UserID       id.UserID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	PrimarySport string    `json:"primary_sport"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
}

// Profile is the stored directory record backing both views.
type Profile struct {
	UserID        id.UserID
	DisplayName   string
	Handle        string
	PrimarySport  string
	AvatarURL     string
	Rank          string
	Location      string
	Gender        string
	ApprovedGuide bool
	Latitude      *float64
	Longitude     *float64
}

// Snapshot projects the profile's public fields.
func (p *Profile) Snapshot() *AthleteSnapshot {
	return &AthleteSnapshot{
		UserID:       p.UserID,
		DisplayName:  p.DisplayName,
		Handle:       p.Handle,
		PrimarySport: p.PrimarySport,
		AvatarURL:    p.AvatarURL,
		Rank:         p.Rank,
		Location:     p.Location,
		Gender:       p.Gender,
	}
}

// Candidate projects the profile's matching fields.
func (p *Profile) Candidate() Candidate {
	return Candidate{
		UserID:       p.UserID,
		DisplayName:  p.DisplayName,
		PrimarySport: p.PrimarySport,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
}

// Directory is the read surface the evaluation and proximity services consume.
//
// Implementations return sentinel.ErrNotFound from Snapshot when no profile
// exists for the user. IsApprovedGuide reports false, not an error, for
// unknown users.
type Directory interface {
	IsApprovedGuide(ctx context.Context, userID id.UserID) (bool, error)
	Snapshot(ctx context.Context, userID id.UserID) (*AthleteSnapshot, error)
	Candidates(ctx context.Context) ([]Candidate, error)
}

// Store adds the write side used by profile sync and tests.
type Store interface {
	Directory
	Upsert(ctx context.Context, profile *Profile) error
}
