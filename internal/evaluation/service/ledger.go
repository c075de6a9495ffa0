// Package service orchestrates the evaluation request lifecycle: creation,
// guide resolution, and verification code redemption. All state lives behind
// the store port; concurrency guarantees (pair uniqueness, single resolve,
// single redemption) are enforced there, and this layer translates the store's
// sentinel errors into coded domain errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"peakform/internal/directory"
	"peakform/internal/evaluation/metrics"
	"peakform/internal/evaluation/models"
	"peakform/internal/evaluation/store"
	"peakform/internal/notify"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/requestcontext"
)

// DefaultCooldown is how long a rejection blocks the pair from a new request.
const DefaultCooldown = 7 * 24 * time.Hour

// CodeIssuer mints verification codes for accepted requests.
type CodeIssuer interface {
	Issue() string
}

// Decision is a guide's verdict on a pending request.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// ResolveInput carries the guide's resolution payload. Schedule fields are
// required for ACCEPT and ignored for REJECT.
type ResolveInput struct {
	Decision Decision
	Schedule models.ScheduleInput
}

// Ledger is the single writer for evaluation request creation and resolution.
type Ledger struct {
	store    store.Store
	dir      directory.Directory
	issuer   CodeIssuer
	emitter  notify.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cooldown time.Duration
}

// Option configures a Ledger or Redeemer.
type Option func(*options)

type options struct {
	emitter  notify.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cooldown time.Duration
}

func WithEmitter(emitter notify.Emitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCooldown overrides the post-rejection cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		o.cooldown = d
	}
}

func buildOptions(opts []Option) options {
	o := options{
		emitter:  notify.NopEmitter{},
		logger:   slog.Default(),
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLedger constructs a Ledger.
func NewLedger(st store.Store, dir directory.Directory, issuer CodeIssuer, opts ...Option) *Ledger {
	o := buildOptions(opts)
	return &Ledger{
		store:    st,
		dir:      dir,
		issuer:   issuer,
		emitter:  o.emitter,
		metrics:  o.metrics,
		logger:   o.logger,
		cooldown: o.cooldown,
	}
}

// Create opens a PENDING request from seeker to guide. The store's uniqueness
// constraint is the authority on the one-active-request-per-pair rule; the
// pre-checks exist to return precise error payloads, not to guard the insert.
func (l *Ledger) Create(ctx context.Context, seekerID, guideID id.UserID, message string) (*models.EvaluationRequest, error) {
	now := requestcontext.Now(ctx)

	req, err := models.NewEvaluationRequest(id.NewEvaluationID(), seekerID, guideID, message, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeSelfRequestNotAllowed) {
			l.metrics.IncrementCreated("self_request")
		}
		return nil, err
	}

	approved, err := l.dir.IsApprovedGuide(ctx, guideID)
	if err != nil {
		l.metrics.IncrementCreated("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "guide credential check failed")
	}
	if !approved {
		return nil, dErrors.New(dErrors.CodeNotFound, "guide not found or not approved")
	}

	if existing, err := l.store.FindActiveByPair(ctx, seekerID, guideID); err == nil {
		l.metrics.IncrementCreated("duplicate")
		return nil, duplicateActiveError(existing)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		l.metrics.IncrementCreated("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "duplicate check failed")
	}

	if rejectedAt, err := l.store.LatestRejectionAt(ctx, seekerID, guideID); err == nil {
		if expiry := rejectedAt.Add(l.cooldown); now.Before(expiry) {
			l.metrics.IncrementCreated("cooldown")
			return nil, dErrors.New(dErrors.CodeCooldownActive, "pair is in post-rejection cooldown").
				WithDetail("cooldown_expires_at", expiry.UTC().Format(time.RFC3339))
		}
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		l.metrics.IncrementCreated("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "cooldown check failed")
	}

	if err := l.store.CreateIfNoActive(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a creation race after the pre-check passed. Re-read the
			// winner so the error payload is as precise as the happy path.
			l.metrics.IncrementCreated("duplicate")
			if existing, findErr := l.store.FindActiveByPair(ctx, seekerID, guideID); findErr == nil {
				return nil, duplicateActiveError(existing)
			}
			return nil, dErrors.New(dErrors.CodeDuplicateActive, "an active request already exists for this guide")
		}
		l.metrics.IncrementCreated("error")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist request failed")
	}

	l.metrics.IncrementCreated("created")
	l.emitter.Emit(ctx, notify.Event{
		Type:         notify.EventStatRequested,
		EvaluationID: req.ID,
		Recipient:    guideID,
		Actor:        seekerID,
		Title:        "New evaluation request",
		Message:      message,
		OccurredAt:   now,
	})
	return req, nil
}

// Resolve applies a guide's accept or reject verdict to a pending request.
// The store's conditional update is the authority on single resolution.
func (l *Ledger) Resolve(ctx context.Context, evalID id.EvaluationID, guideID id.UserID, in ResolveInput) (*models.EvaluationRequest, error) {
	now := requestcontext.Now(ctx)

	req, err := l.store.FindByID(ctx, evalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evaluation request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load request failed")
	}
	if err := req.CanResolve(guideID); err != nil {
		return nil, err
	}

	var event notify.Event
	switch in.Decision {
	case DecisionAccept:
		sched, err := in.Schedule.Validate()
		if err != nil {
			return nil, err
		}
		code := l.issuer.Issue()
		req.ApplyAccept(sched, code, now)
		event = notify.Event{
			Type:         notify.EventStatApproved,
			EvaluationID: req.ID,
			Recipient:    req.SeekerID,
			Actor:        guideID,
			Title:        "Evaluation request accepted",
			Message: fmt.Sprintf("Scheduled %s %s at %s. Verification code: %s",
				sched.Date, sched.Time, sched.Location, code),
			Data: map[string]string{
				"scheduled_date": sched.Date.String(),
				"scheduled_time": sched.Time,
				"location":       sched.Location,
				"code":           code,
			},
			OccurredAt: now,
		}
	case DecisionReject:
		note, err := models.ValidateModeratorNote(in.Schedule.ModeratorMessage)
		if err != nil {
			return nil, err
		}
		req.ApplyReject(note, now)
		event = notify.Event{
			Type:         notify.EventStatDenied,
			EvaluationID: req.ID,
			Recipient:    req.SeekerID,
			Actor:        guideID,
			Title:        "Evaluation request declined",
			Message:      note,
			OccurredAt:   now,
		}
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown decision %q", in.Decision)
	}

	if err := l.store.ResolveFromPending(ctx, req); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeAlreadyResolved, "request has already been resolved")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "evaluation request not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist resolution failed")
		}
	}

	l.metrics.IncrementResolved(strings.ToLower(string(req.Status)))
	l.emitter.Emit(ctx, event)
	return req, nil
}

// ListForSeeker returns the seeker's outgoing requests, newest first.
func (l *Ledger) ListForSeeker(ctx context.Context, seekerID id.UserID) ([]*models.EvaluationRequest, error) {
	reqs, err := l.store.ListBySeeker(ctx, seekerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list requests failed")
	}
	return reqs, nil
}

// ListForGuide returns the guide's incoming requests, newest first.
func (l *Ledger) ListForGuide(ctx context.Context, guideID id.UserID) ([]*models.EvaluationRequest, error) {
	reqs, err := l.store.ListByGuide(ctx, guideID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list requests failed")
	}
	return reqs, nil
}

func duplicateActiveError(existing *models.EvaluationRequest) error {
	return dErrors.New(dErrors.CodeDuplicateActive, "an active request already exists for this guide").
		WithDetail("existing_request_id", existing.ID.String()).
		WithDetail("existing_status", string(existing.Status))
}
