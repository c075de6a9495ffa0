// Package handler exposes the evaluation request lifecycle over HTTP. All
// routes require an authenticated caller; the caller's identity always comes
// from the token, never from the request body.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"peakform/internal/directory"
	"peakform/internal/evaluation/models"
	"peakform/internal/evaluation/service"
	"peakform/internal/platform/middleware"
	"peakform/internal/transport/http/shared"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/middleware/requesttime"
	"peakform/pkg/requestcontext"
)

// LedgerService is the request lifecycle surface the handler consumes.
type LedgerService interface {
	Create(ctx context.Context, seekerID, guideID id.UserID, message string) (*models.EvaluationRequest, error)
	Resolve(ctx context.Context, evalID id.EvaluationID, guideID id.UserID, in service.ResolveInput) (*models.EvaluationRequest, error)
	ListForSeeker(ctx context.Context, seekerID id.UserID) ([]*models.EvaluationRequest, error)
	ListForGuide(ctx context.Context, guideID id.UserID) ([]*models.EvaluationRequest, error)
}

// RedeemerService is the verification surface the handler consumes.
type RedeemerService interface {
	Redeem(ctx context.Context, guideID id.UserID, code string) (*directory.AthleteSnapshot, error)
	CleanupStaleCode(ctx context.Context, guideID id.UserID, code string, seekerID *id.UserID) (int64, error)
}

// Handler handles evaluation request endpoints.
type Handler struct {
	logger       *slog.Logger
	ledger       LedgerService
	redeemer     RedeemerService
	jwtValidator middleware.JWTValidator
}

// New creates a new evaluation Handler.
func New(
	ledger LedgerService,
	redeemer RedeemerService,
	logger *slog.Logger,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		ledger:       ledger,
		redeemer:     redeemer,
		jwtValidator: jwtValidator,
	}
}

// Register registers the evaluation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	evalRouter := chi.NewRouter()
	evalRouter.Use(middleware.Recovery(h.logger))
	evalRouter.Use(middleware.RequestID)
	evalRouter.Use(middleware.Logger(h.logger))
	evalRouter.Use(middleware.Timeout(30 * time.Second))
	evalRouter.Use(middleware.ContentTypeJSON)
	evalRouter.Use(requesttime.Middleware)
	evalRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	evalRouter.Post("/", h.handleCreate)
	evalRouter.Post("/{id}/resolve", h.handleResolve)
	evalRouter.Post("/redeem", h.handleRedeem)
	evalRouter.Delete("/codes", h.handleCleanupCode)
	evalRouter.Get("/seeker", h.handleListForSeeker)
	evalRouter.Get("/guide", h.handleListForGuide)

	r.Mount("/evaluations", evalRouter)
}

type createRequest struct {
	GuideID string `json:"guide_id"`
	Message string `json:"message"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.CallerID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	guideID, err := id.ParseUserID(req.GuideID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid guide_id"))
		return
	}

	created, err := h.ledger.Create(ctx, callerID, guideID, req.Message)
	if err != nil {
		h.logError(ctx, "create evaluation request failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

type resolveRequest struct {
	Decision         string `json:"decision"`
	ModeratorMessage string `json:"moderator_message"`
	ScheduledDate    string `json:"scheduled_date"`
	ScheduledTime    string `json:"scheduled_time"`
	Location         string `json:"location"`
	Equipment        string `json:"equipment"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.CallerID(ctx)

	evalID, err := id.ParseEvaluationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid evaluation id"))
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resolved, err := h.ledger.Resolve(ctx, evalID, callerID, service.ResolveInput{
		Decision: service.Decision(req.Decision),
		Schedule: models.ScheduleInput{
			ModeratorMessage: req.ModeratorMessage,
			Date:             req.ScheduledDate,
			Time:             req.ScheduledTime,
			Location:         req.Location,
			Equipment:        req.Equipment,
		},
	})
	if err != nil {
		h.logError(ctx, "resolve evaluation request failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resolved)
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.CallerID(ctx)

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	snapshot, err := h.redeemer.Redeem(ctx, callerID, req.Code)
	if err != nil {
		h.logError(ctx, "redeem verification code failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snapshot)
}

type cleanupRequest struct {
	Code     string `json:"code"`
	SeekerID string `json:"seeker_id,omitempty"`
}

type cleanupResponse struct {
	Removed int64 `json:"removed"`
}

func (h *Handler) handleCleanupCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.CallerID(ctx)

	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var seekerID *id.UserID
	if req.SeekerID != "" {
		parsed, err := id.ParseUserID(req.SeekerID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid seeker_id"))
			return
		}
		seekerID = &parsed
	}

	removed, err := h.redeemer.CleanupStaleCode(ctx, callerID, req.Code, seekerID)
	if err != nil {
		h.logError(ctx, "cleanup stale code failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cleanupResponse{Removed: removed})
}

func (h *Handler) handleListForSeeker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.ledger.ListForSeeker(ctx, requestcontext.CallerID(ctx))
	if err != nil {
		h.logError(ctx, "list seeker requests failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) handleListForGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.ledger.ListForGuide(ctx, requestcontext.CallerID(ctx))
	if err != nil {
		h.logError(ctx, "list guide requests failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}
