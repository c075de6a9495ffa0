// Package memory provides an in-memory directory store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"peakform/internal/directory"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*directory.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.UserID]*directory.Profile)}
}

func (s *InMemoryStore) Upsert(_ context.Context, profile *directory.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}

func (s *InMemoryStore) IsApprovedGuide(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return ok && p.ApprovedGuide, nil
}

func (s *InMemoryStore) Snapshot(_ context.Context, userID id.UserID) (*directory.AthleteSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Snapshot(), nil
}

func (s *InMemoryStore) Candidates(_ context.Context) ([]directory.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]directory.Candidate, 0, len(s.profiles))
	for _, p := range s.profiles {
		if !p.ApprovedGuide {
			continue
		}
		out = append(out, p.Candidate())
	}
	// Map iteration order is random; keep output stable for callers and tests.
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}
