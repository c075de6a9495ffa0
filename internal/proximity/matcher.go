// Package proximity finds approved guides near an athlete by great-circle
// distance over the directory's candidate pool.
package proximity

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"peakform/internal/directory"
	id "peakform/pkg/domain"
)

var nearbyQueries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "peakform_proximity_nearby_queries_total",
	Help: "Total nearby-guide queries by result",
}, []string{"result"}) // result: "matched", "empty", "error"

const (
	// DefaultRadiusKm applies when the caller passes a zero or negative radius.
	DefaultRadiusKm = 10.0
	// WideRadiusKm is the fallback search radius used when a defaulted search
	// comes back empty.
	WideRadiusKm = 50.0

	DefaultLimit = 100
	MaxLimit     = 1000

	earthRadiusKm = 6371.0

	// Below this pool size a single-threaded scan beats goroutine overhead.
	parallelThreshold = 512
)

// Origin is the point to search around.
type Origin struct {
	Latitude  float64
	Longitude float64
}

// Query describes a nearby-guide search.
type Query struct {
	Origin   Origin
	RadiusKm float64
	Limit    int
	// Exclude removes the caller from their own candidate pool.
	Exclude id.UserID
}

// Match is a candidate within the search radius.
type Match struct {
	directory.Candidate
	DistanceKm float64 `json:"distance_km"`
}

// Matcher resolves nearby-guide queries against the directory.
type Matcher struct {
	dir    directory.Directory
	logger *slog.Logger
}

func NewMatcher(dir directory.Directory, logger *slog.Logger) *Matcher {
	return &Matcher{dir: dir, logger: logger}
}

// FindNearby loads the candidate pool and ranks it around the query origin.
// When the caller did not choose a radius and the default turns up nothing,
// the search widens once before giving up.
func (m *Matcher) FindNearby(ctx context.Context, q Query) ([]Match, error) {
	candidates, err := m.dir.Candidates(ctx)
	if err != nil {
		nearbyQueries.WithLabelValues("error").Inc()
		return nil, err
	}

	defaulted := q.RadiusKm <= 0
	if defaulted {
		q.RadiusKm = DefaultRadiusKm
	}

	matches := Rank(ctx, q, candidates)
	if len(matches) == 0 && defaulted {
		q.RadiusKm = WideRadiusKm
		matches = Rank(ctx, q, candidates)
		m.logger.Debug("widened empty nearby search",
			"radius_km", q.RadiusKm, "matches", len(matches))
	}

	if len(matches) == 0 {
		nearbyQueries.WithLabelValues("empty").Inc()
	} else {
		nearbyQueries.WithLabelValues("matched").Inc()
	}
	return matches, nil
}

// Rank filters candidates by haversine distance from the query origin, sorts
// ascending, and truncates to the query limit. Candidates without coordinates
// and the excluded user are skipped. Pure; safe for concurrent use.
func Rank(ctx context.Context, q Query, candidates []directory.Candidate) []Match {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var matches []Match
	if len(candidates) >= parallelThreshold {
		matches = scanParallel(ctx, q, candidates)
	} else {
		matches = scanChunk(q, candidates)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func scanChunk(q Query, candidates []directory.Candidate) []Match {
	var out []Match
	for _, c := range candidates {
		if c.UserID == q.Exclude {
			continue
		}
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		d := haversineKm(q.Origin.Latitude, q.Origin.Longitude, *c.Latitude, *c.Longitude)
		if d <= q.RadiusKm {
			out = append(out, Match{Candidate: c, DistanceKm: d})
		}
	}
	return out
}

func scanParallel(ctx context.Context, q Query, candidates []directory.Candidate) []Match {
	g, _ := errgroup.WithContext(ctx)

	chunks := (len(candidates) + parallelThreshold - 1) / parallelThreshold
	results := make([][]Match, chunks)

	for i := 0; i < chunks; i++ {
		start := i * parallelThreshold
		end := min(start+parallelThreshold, len(candidates))
		g.Go(func() error {
			results[start/parallelThreshold] = scanChunk(q, candidates[start:end])
			return nil
		})
	}
	_ = g.Wait()

	var out []Match
	for _, part := range results {
		out = append(out, part...)
	}
	return out
}

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
