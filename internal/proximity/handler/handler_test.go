package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"peakform/internal/directory"
	dirmemory "peakform/internal/directory/store/memory"
	jwttoken "peakform/internal/jwt_token"
	"peakform/internal/proximity"
	"peakform/internal/proximity/handler"
	id "peakform/pkg/domain"
)

type NearbyHandlerSuite struct {
	suite.Suite
	router     chi.Router
	jwtService *jwttoken.JWTService

	callerID id.UserID
	guideID  id.UserID
}

func TestNearbyHandlerSuite(t *testing.T) {
	suite.Run(t, new(NearbyHandlerSuite))
}

func coord(v float64) *float64 { return &v }

func (s *NearbyHandlerSuite) SetupTest() {
	dir := dirmemory.NewInMemoryStore()
	s.jwtService = jwttoken.NewJWTService("test-signing-key", "test-issuer", "test-audience")

	s.callerID = id.UserID(uuid.New())
	s.guideID = id.UserID(uuid.New())
	ctx := context.Background()
	// The caller is themselves an approved guide near the origin; nearby
	// results must not echo them back.
	s.Require().NoError(dir.Upsert(ctx, &directory.Profile{
		UserID: s.callerID, DisplayName: "Caller", ApprovedGuide: true,
		Latitude: coord(40.7580), Longitude: coord(-73.9855),
	}))
	s.Require().NoError(dir.Upsert(ctx, &directory.Profile{
		UserID: s.guideID, DisplayName: "Coach Reyes", ApprovedGuide: true,
		Latitude: coord(40.7829), Longitude: coord(-73.9654),
	}))

	logger := slog.New(slog.DiscardHandler)
	h := handler.New(proximity.NewMatcher(dir, logger), logger, jwttoken.NewJWTServiceAdapter(s.jwtService))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *NearbyHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	token, err := s.jwtService.GenerateAccessToken(s.callerID, "", time.Hour)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *NearbyHandlerSuite) TestNearbyExcludesCaller() {
	rec := s.get("/guides/nearby?lat=40.7580&lon=-73.9855&radius_km=10")
	s.Require().Equal(http.StatusOK, rec.Code)

	var matches []struct {
		UserID     string  `json:"user_id"`
		DistanceKm float64 `json:"distance_km"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &matches))
	s.Require().Len(matches, 1)
	s.Equal(s.guideID.String(), matches[0].UserID)
	s.InDelta(3.2, matches[0].DistanceKm, 0.5)
}

func (s *NearbyHandlerSuite) TestNearbyValidation() {
	cases := []struct {
		name string
		path string
	}{
		{"missing lat", "/guides/nearby?lon=-73.9855"},
		{"missing lon", "/guides/nearby?lat=40.7580"},
		{"non-numeric lat", "/guides/nearby?lat=abc&lon=-73.9855"},
		{"latitude out of range", "/guides/nearby?lat=91&lon=0"},
		{"longitude out of range", "/guides/nearby?lat=0&lon=181"},
		{"bad radius", "/guides/nearby?lat=40.7580&lon=-73.9855&radius_km=wide"},
		{"bad limit", "/guides/nearby?lat=40.7580&lon=-73.9855&limit=few"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(http.StatusBadRequest, s.get(tc.path).Code)
		})
	}
}

func (s *NearbyHandlerSuite) TestNearbyEmptyIsArray() {
	// Far from any seeded guide, beyond even the widened fallback.
	rec := s.get(fmt.Sprintf("/guides/nearby?lat=%f&lon=%f", -33.8688, 151.2093))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("[]\n", rec.Body.String())
}

func (s *NearbyHandlerSuite) TestAuthRequired() {
	req := httptest.NewRequest(http.MethodGet, "/guides/nearby?lat=0&lon=0", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}
