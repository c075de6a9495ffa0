// Package store defines the persistence port for evaluation requests.
// Implementations return pkg/platform/sentinel errors for infrastructure
// facts; services translate them into coded domain errors.
package store

import (
	"context"
	"time"

	"peakform/internal/evaluation/models"
	id "peakform/pkg/domain"
)

// Store is the single persistence boundary for evaluation requests. Only the
// ledger and redeemer services may mutate rows through it.
type Store interface {
	// CreateIfNoActive inserts a new PENDING request, failing with
	// sentinel.ErrConflict when an active (PENDING or ACCEPTED) request
	// already exists for the pair. The conflict check and the insert are one
	// atomic operation: concurrent creations for the same pair cannot both
	// succeed.
	CreateIfNoActive(ctx context.Context, req *models.EvaluationRequest) error

	// FindByID returns the request or sentinel.ErrNotFound.
	FindByID(ctx context.Context, evalID id.EvaluationID) (*models.EvaluationRequest, error)

	// FindActiveByPair returns the pair's PENDING or ACCEPTED request, or
	// sentinel.ErrNotFound.
	FindActiveByPair(ctx context.Context, seekerID, guideID id.UserID) (*models.EvaluationRequest, error)

	// LatestRejectionAt returns the UpdatedAt of the pair's most recent
	// REJECTED request, or sentinel.ErrNotFound when the pair has none.
	LatestRejectionAt(ctx context.Context, seekerID, guideID id.UserID) (time.Time, error)

	// ResolveFromPending persists an accept/reject transition conditionally:
	// the row is updated only while still PENDING. Returns
	// sentinel.ErrInvalidState when another resolver won the race and
	// sentinel.ErrNotFound when the row is gone.
	ResolveFromPending(ctx context.Context, req *models.EvaluationRequest) error

	// FindByGuideAndCode returns the ACCEPTED request carrying the code for
	// this guide, or sentinel.ErrNotFound. Callers must not distinguish the
	// miss reasons (unknown code, wrong guide, already redeemed).
	FindByGuideAndCode(ctx context.Context, guideID id.UserID, code string) (*models.EvaluationRequest, error)

	// MarkVerified transitions ACCEPTED -> VERIFIED conditionally on the
	// current status, so a code is redeemable at most once even under
	// concurrent calls. Returns sentinel.ErrAlreadyUsed when the row is no
	// longer ACCEPTED and sentinel.ErrNotFound when it is gone.
	MarkVerified(ctx context.Context, evalID id.EvaluationID, now time.Time) error

	// ListBySeeker returns the seeker's requests in the listable statuses
	// (PENDING, ACCEPTED, REJECTED), newest first.
	ListBySeeker(ctx context.Context, seekerID id.UserID) ([]*models.EvaluationRequest, error)

	// ListByGuide returns the guide's incoming requests in the listable
	// statuses, newest first.
	ListByGuide(ctx context.Context, guideID id.UserID) ([]*models.EvaluationRequest, error)

	// DeleteByCode removes outstanding ACCEPTED requests matching the code
	// for the guide, optionally narrowed to one seeker. Returns the number
	// of rows removed; zero matches is not an error.
	DeleteByCode(ctx context.Context, guideID id.UserID, code string, seekerID *id.UserID) (int64, error)
}
