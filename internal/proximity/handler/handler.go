// Package handler exposes nearby-guide discovery over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"peakform/internal/platform/middleware"
	"peakform/internal/proximity"
	"peakform/internal/transport/http/shared"
	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/requestcontext"
)

// MatcherService is the discovery surface the handler consumes.
type MatcherService interface {
	FindNearby(ctx context.Context, q proximity.Query) ([]proximity.Match, error)
}

// Handler handles guide discovery endpoints.
type Handler struct {
	logger       *slog.Logger
	matcher      MatcherService
	jwtValidator middleware.JWTValidator
}

// New creates a new proximity Handler.
func New(matcher MatcherService, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		matcher:      matcher,
		jwtValidator: jwtValidator,
	}
}

// Register registers the discovery routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	guideRouter := chi.NewRouter()
	guideRouter.Use(middleware.Recovery(h.logger))
	guideRouter.Use(middleware.RequestID)
	guideRouter.Use(middleware.Logger(h.logger))
	guideRouter.Use(middleware.Timeout(15 * time.Second))
	guideRouter.Use(middleware.ContentTypeJSON)
	guideRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	guideRouter.Get("/nearby", h.handleNearby)

	r.Mount("/guides", guideRouter)
}

func (h *Handler) handleNearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat, err := parseFloat(r, "lat")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	lon, err := parseFloat(r, "lon")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "coordinates out of range"))
		return
	}

	q := proximity.Query{
		Origin:  proximity.Origin{Latitude: lat, Longitude: lon},
		Exclude: requestcontext.CallerID(ctx),
	}
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid radius_km"))
			return
		}
		q.RadiusKm = v
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
		q.Limit = v
	}

	matches, err := h.matcher.FindNearby(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "nearby guide search failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "guide search failed"))
		return
	}
	if matches == nil {
		matches = []proximity.Match{}
	}
	shared.WriteJSON(w, http.StatusOK, matches)
}

func parseFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name)
	}
	return v, nil
}
