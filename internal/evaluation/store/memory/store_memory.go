// Package memory provides the in-memory evaluation store used by unit tests
// and local development. It enforces the same pair-uniqueness and conditional
// transition semantics as the PostgreSQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"peakform/internal/evaluation/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.EvaluationID]*models.EvaluationRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.EvaluationID]*models.EvaluationRequest)}
}

func (s *InMemoryStore) CreateIfNoActive(_ context.Context, req *models.EvaluationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.SeekerID == req.SeekerID && existing.GuideID == req.GuideID && existing.Status.Active() {
			return sentinel.ErrConflict
		}
	}
	s.requests[req.ID] = clone(req)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, evalID id.EvaluationID) (*models.EvaluationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[evalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(req), nil
}

func (s *InMemoryStore) FindActiveByPair(_ context.Context, seekerID, guideID id.UserID) (*models.EvaluationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, req := range s.requests {
		if req.SeekerID == seekerID && req.GuideID == guideID && req.Status.Active() {
			return clone(req), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) LatestRejectionAt(_ context.Context, seekerID, guideID id.UserID) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest time.Time
	found := false
	for _, req := range s.requests {
		if req.SeekerID == seekerID && req.GuideID == guideID && req.Status == models.StatusRejected {
			if req.UpdatedAt.After(latest) {
				latest = req.UpdatedAt
				found = true
			}
		}
	}
	if !found {
		return time.Time{}, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *InMemoryStore) ResolveFromPending(_ context.Context, req *models.EvaluationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[req.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != models.StatusPending {
		return sentinel.ErrInvalidState
	}
	s.requests[req.ID] = clone(req)
	return nil
}

func (s *InMemoryStore) FindByGuideAndCode(_ context.Context, guideID id.UserID, code string) (*models.EvaluationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, req := range s.requests {
		if req.GuideID == guideID && req.VerificationCode == code && req.Status == models.StatusAccepted {
			return clone(req), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) MarkVerified(_ context.Context, evalID id.EvaluationID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[evalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if req.Status != models.StatusAccepted {
		return sentinel.ErrAlreadyUsed
	}
	req.ApplyVerify(now)
	return nil
}

func (s *InMemoryStore) ListBySeeker(_ context.Context, seekerID id.UserID) ([]*models.EvaluationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(req *models.EvaluationRequest) bool {
		return req.SeekerID == seekerID
	}), nil
}

func (s *InMemoryStore) ListByGuide(_ context.Context, guideID id.UserID) ([]*models.EvaluationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(req *models.EvaluationRequest) bool {
		return req.GuideID == guideID
	}), nil
}

func (s *InMemoryStore) DeleteByCode(_ context.Context, guideID id.UserID, code string, seekerID *id.UserID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for evalID, req := range s.requests {
		if req.GuideID != guideID || req.VerificationCode != code || req.Status != models.StatusAccepted {
			continue
		}
		if seekerID != nil && req.SeekerID != *seekerID {
			continue
		}
		delete(s.requests, evalID)
		removed++
	}
	return removed, nil
}

// list must be called with at least a read lock held.
func (s *InMemoryStore) list(match func(*models.EvaluationRequest) bool) []*models.EvaluationRequest {
	out := make([]*models.EvaluationRequest, 0)
	for _, req := range s.requests {
		if req.Status.Listable() && match(req) {
			out = append(out, clone(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func clone(req *models.EvaluationRequest) *models.EvaluationRequest {
	copied := *req
	if req.Equipment != nil {
		copied.Equipment = append([]string(nil), req.Equipment...)
	}
	return &copied
}
