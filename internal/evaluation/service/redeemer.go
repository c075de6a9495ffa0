package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"peakform/internal/directory"
	"peakform/internal/evaluation/metrics"
	"peakform/internal/evaluation/models"
	"peakform/internal/evaluation/store"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/requestcontext"
)

// Redeemer performs the on-site verification handshake: a guide presents a
// code, and on the scheduled day the matching request transitions to VERIFIED
// and the seeker's public profile snapshot is released.
type Redeemer struct {
	store   store.Store
	dir     directory.Directory
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRedeemer constructs a Redeemer.
func NewRedeemer(st store.Store, dir directory.Directory, opts ...Option) *Redeemer {
	o := buildOptions(opts)
	return &Redeemer{
		store:   st,
		dir:     dir,
		metrics: o.metrics,
		logger:  o.logger,
	}
}

// Redeem consumes a verification code. Misses are reported uniformly as
// InvalidCode: an unknown code, a consumed code, and another guide's code are
// indistinguishable to the caller. The date gate compares calendar dates, not
// instants, so a redemption at 23:59 local time is still "today".
func (r *Redeemer) Redeem(ctx context.Context, guideID id.UserID, code string) (*directory.AthleteSnapshot, error) {
	start := time.Now()
	defer r.metrics.ObserveRedeemLatency(start)

	approved, err := r.dir.IsApprovedGuide(ctx, guideID)
	if err != nil {
		r.metrics.IncrementRedemption("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "guide credential check failed")
	}
	if !approved {
		r.metrics.IncrementRedemption("forbidden")
		return nil, dErrors.New(dErrors.CodeGuideAccessRequired, "an approved guide credential is required")
	}

	req, err := r.store.FindByGuideAndCode(ctx, guideID, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			r.metrics.IncrementRedemption("invalid_code")
			return nil, invalidCodeError()
		}
		r.metrics.IncrementRedemption("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "code lookup failed")
	}
	if err := req.CanVerify(); err != nil {
		r.metrics.IncrementRedemption("invalid_code")
		return nil, err
	}

	now := requestcontext.Now(ctx)
	today := models.DateOf(now)
	if !req.ScheduledDate.Equal(today) {
		r.metrics.IncrementRedemption("date_mismatch")
		return nil, dErrors.New(dErrors.CodeDateMismatch, "code is only valid on the scheduled date").
			WithDetail("scheduled_date", req.ScheduledDate.String()).
			WithDetail("today", today.String())
	}

	if err := r.store.MarkVerified(ctx, req.ID, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrNotFound):
			// Lost the redemption race; indistinguishable from a bad code.
			r.metrics.IncrementRedemption("invalid_code")
			return nil, invalidCodeError()
		default:
			r.metrics.IncrementRedemption("error")
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist verification failed")
		}
	}

	snapshot, err := r.dir.Snapshot(ctx, req.SeekerID)
	if err != nil {
		// The transition is durable; a missing profile only degrades the
		// payload, it must not look like a failed redemption.
		r.logger.Warn("redeemed without seeker snapshot",
			"evaluation_id", req.ID, "seeker_id", req.SeekerID, "error", err)
		snapshot = &directory.AthleteSnapshot{UserID: req.SeekerID}
	}

	r.metrics.IncrementRedemption("verified")
	return snapshot, nil
}

// CleanupStaleCode deletes an outstanding request/code pair, optionally
// narrowed to one seeker. The count is reported but zero matches is success;
// callers cannot probe whether a code ever existed.
func (r *Redeemer) CleanupStaleCode(ctx context.Context, guideID id.UserID, code string, seekerID *id.UserID) (int64, error) {
	approved, err := r.dir.IsApprovedGuide(ctx, guideID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "guide credential check failed")
	}
	if !approved {
		return 0, dErrors.New(dErrors.CodeGuideAccessRequired, "an approved guide credential is required")
	}

	removed, err := r.store.DeleteByCode(ctx, guideID, code, seekerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "cleanup failed")
	}
	return removed, nil
}

func invalidCodeError() error {
	return dErrors.New(dErrors.CodeInvalidCode, "no matching verification code")
}
