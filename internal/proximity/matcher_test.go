package proximity_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peakform/internal/directory"
	"peakform/internal/directory/store/memory"
	"peakform/internal/proximity"
	id "peakform/pkg/domain"
)

func coord(v float64) *float64 { return &v }

func candidateAt(name string, lat, lon float64) directory.Candidate {
	return directory.Candidate{
		UserID:      id.UserID(uuid.New()),
		DisplayName: name,
		Latitude:    coord(lat),
		Longitude:   coord(lon),
	}
}

// Times Square as a reference origin; distances below are approximate
// great-circle values.
var origin = proximity.Origin{Latitude: 40.7580, Longitude: -73.9855}

func TestRankFiltersAndSorts(t *testing.T) {
	atOrigin := candidateAt("at origin", 40.7580, -73.9855)
	nearby := candidateAt("central park", 40.7829, -73.9654) // ~3.2km
	farther := candidateAt("jfk airport", 40.6413, -73.7781) // ~21.8km
	noCoords := directory.Candidate{UserID: id.UserID(uuid.New()), DisplayName: "no coords"}

	candidates := []directory.Candidate{farther, noCoords, nearby, atOrigin}

	t.Run("default radius keeps only close matches", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: proximity.DefaultRadiusKm}, candidates)

		require.Len(t, matches, 2)
		assert.Equal(t, atOrigin.UserID, matches[0].UserID)
		assert.InDelta(t, 0, matches[0].DistanceKm, 0.001)
		assert.Equal(t, nearby.UserID, matches[1].UserID)
		assert.InDelta(t, 3.2, matches[1].DistanceKm, 0.5)
	})

	t.Run("wide radius includes farther matches in order", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: proximity.WideRadiusKm}, candidates)

		require.Len(t, matches, 3)
		assert.Equal(t, farther.UserID, matches[2].UserID)
		assert.InDelta(t, 21.8, matches[2].DistanceKm, 1.0)
	})

	t.Run("exclude removes the caller", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: 10, Exclude: atOrigin.UserID}, candidates)

		require.Len(t, matches, 1)
		assert.Equal(t, nearby.UserID, matches[0].UserID)
	})
}

func TestRankLimit(t *testing.T) {
	candidates := make([]directory.Candidate, 0, 150)
	for i := range 150 {
		// Spread along a meridian, ~1.1km apart, all inside the radius.
		candidates = append(candidates,
			candidateAt(fmt.Sprintf("guide-%d", i), 40.7580+float64(i)*0.01, -73.9855))
	}

	t.Run("default limit", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: 1000}, candidates)
		assert.Len(t, matches, proximity.DefaultLimit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: 1000, Limit: 5}, candidates)
		require.Len(t, matches, 5)
		// Closest first.
		assert.Equal(t, candidates[0].UserID, matches[0].UserID)
	})

	t.Run("limit above cap clamps", func(t *testing.T) {
		matches := proximity.Rank(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: 1000, Limit: 5000}, candidates)
		assert.Len(t, matches, 150)
	})
}

func TestRankLargePoolParallelPath(t *testing.T) {
	candidates := make([]directory.Candidate, 0, 2000)
	for i := range 2000 {
		lat := 40.0 + float64(i%100)*0.001
		lon := -74.0 + float64(i/100)*0.001
		candidates = append(candidates, candidateAt(fmt.Sprintf("guide-%d", i), lat, lon))
	}

	matches := proximity.Rank(context.Background(),
		proximity.Query{Origin: proximity.Origin{Latitude: 40.0, Longitude: -74.0}, RadiusKm: 1000, Limit: proximity.MaxLimit},
		candidates)

	require.Len(t, matches, proximity.MaxLimit)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].DistanceKm, matches[i].DistanceKm)
	}
}

func TestMatcherWideFallback(t *testing.T) {
	store := memory.NewInMemoryStore()
	farGuide := &directory.Profile{
		UserID:        id.UserID(uuid.New()),
		DisplayName:   "Far Guide",
		ApprovedGuide: true,
		Latitude:      coord(40.9), // ~15.8km north of the origin
		Longitude:     coord(-73.9855),
	}
	require.NoError(t, store.Upsert(context.Background(), farGuide))

	matcher := proximity.NewMatcher(store, slog.Default())

	t.Run("zero radius widens when default finds nothing", func(t *testing.T) {
		matches, err := matcher.FindNearby(context.Background(), proximity.Query{Origin: origin})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, farGuide.UserID, matches[0].UserID)
	})

	t.Run("explicit radius does not widen", func(t *testing.T) {
		matches, err := matcher.FindNearby(context.Background(),
			proximity.Query{Origin: origin, RadiusKm: 5})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}
