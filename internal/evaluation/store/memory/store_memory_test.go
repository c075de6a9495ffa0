package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"peakform/internal/evaluation/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

type EvaluationStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *EvaluationStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestEvaluationStoreSuite(t *testing.T) {
	suite.Run(t, new(EvaluationStoreSuite))
}

func (s *EvaluationStoreSuite) newRequest(seeker, guide id.UserID) *models.EvaluationRequest {
	req, err := models.NewEvaluationRequest(
		id.NewEvaluationID(), seeker, guide,
		"Looking to get evaluated for track season", time.Now())
	s.Require().NoError(err)
	return req
}

func (s *EvaluationStoreSuite) accept(req *models.EvaluationRequest, code string) {
	sched, err := models.ScheduleInput{
		ModeratorMessage: "See you there",
		Date:             "2025-03-10",
		Time:             "09:00",
		Location:         "City Track Field",
		Equipment:        "stopwatch, cones",
	}.Validate()
	s.Require().NoError(err)
	req.ApplyAccept(sched, code, time.Now())
	s.Require().NoError(s.store.ResolveFromPending(s.ctx, req))
}

// TestCreationAndLookups verifies basic create/find round-trips.
func (s *EvaluationStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by ID", func() {
		req := s.newRequest(id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, req))

		found, err := s.store.FindByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(req.Message, found.Message)
		s.Equal(models.StatusPending, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewEvaluationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestPairUniqueness verifies at most one active request per pair.
func (s *EvaluationStoreSuite) TestPairUniqueness() {
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())

	s.Run("rejects a second pending request for the pair", func() {
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, s.newRequest(seeker, guide)))
		err := s.store.CreateIfNoActive(s.ctx, s.newRequest(seeker, guide))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("an accepted request still blocks the pair", func() {
		active, err := s.store.FindActiveByPair(s.ctx, seeker, guide)
		s.Require().NoError(err)
		s.accept(active, "483920")

		err = s.store.CreateIfNoActive(s.ctx, s.newRequest(seeker, guide))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("a rejected request frees the pair", func() {
		other := s.newRequest(id.UserID(uuid.New()), guide)
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, other))
		other.ApplyReject("", time.Now())
		s.Require().NoError(s.store.ResolveFromPending(s.ctx, other))

		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, s.newRequest(other.SeekerID, guide)))
	})
}

// TestConcurrentCreation verifies that racing creations for the same pair
// produce exactly one winner.
func (s *EvaluationStoreSuite) TestConcurrentCreation() {
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfNoActive(s.ctx, s.newRequest(seeker, guide))
			switch {
			case err == nil:
				successCount.Add(1)
			default:
				s.ErrorIs(err, sentinel.ErrConflict)
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

// TestConditionalTransitions verifies one-winner semantics on resolve and verify.
func (s *EvaluationStoreSuite) TestConditionalTransitions() {
	s.Run("resolve loses once the row left PENDING", func() {
		req := s.newRequest(id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, req))
		s.accept(req, "111111")

		late := *req
		late.ApplyReject("changed my mind", time.Now())
		s.Require().ErrorIs(s.store.ResolveFromPending(s.ctx, &late), sentinel.ErrInvalidState)
	})

	s.Run("MarkVerified is single-use", func() {
		req := s.newRequest(id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, req))
		s.accept(req, "222222")

		s.Require().NoError(s.store.MarkVerified(s.ctx, req.ID, time.Now()))
		s.Require().ErrorIs(s.store.MarkVerified(s.ctx, req.ID, time.Now()), sentinel.ErrAlreadyUsed)
	})

	s.Run("concurrent MarkVerified has exactly one winner", func() {
		req := s.newRequest(id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, req))
		s.accept(req, "333333")

		const goroutines = 20
		var wg sync.WaitGroup
		var wins atomic.Int32
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.store.MarkVerified(s.ctx, req.ID, time.Now()); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

// TestCodeLookupAndCleanup verifies redemption lookups and anti-enumeration cleanup.
func (s *EvaluationStoreSuite) TestCodeLookupAndCleanup() {
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())
	req := s.newRequest(seeker, guide)
	s.Require().NoError(s.store.CreateIfNoActive(s.ctx, req))
	s.accept(req, "483920")

	s.Run("finds accepted request by guide and code", func() {
		found, err := s.store.FindByGuideAndCode(s.ctx, guide, "483920")
		s.Require().NoError(err)
		s.Equal(req.ID, found.ID)
	})

	s.Run("wrong guide misses", func() {
		_, err := s.store.FindByGuideAndCode(s.ctx, id.UserID(uuid.New()), "483920")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("verified request no longer matches", func() {
		s.Require().NoError(s.store.MarkVerified(s.ctx, req.ID, time.Now()))
		_, err := s.store.FindByGuideAndCode(s.ctx, guide, "483920")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("cleanup reports zero without error for unknown code", func() {
		removed, err := s.store.DeleteByCode(s.ctx, guide, "000000", nil)
		s.Require().NoError(err)
		s.Zero(removed)
	})

	s.Run("cleanup narrows by seeker", func() {
		fresh := s.newRequest(seeker, id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(s.ctx, fresh))
		s.accept(fresh, "777777")

		otherSeeker := id.UserID(uuid.New())
		removed, err := s.store.DeleteByCode(s.ctx, fresh.GuideID, "777777", &otherSeeker)
		s.Require().NoError(err)
		s.Zero(removed)

		removed, err = s.store.DeleteByCode(s.ctx, fresh.GuideID, "777777", &seeker)
		s.Require().NoError(err)
		s.Equal(int64(1), removed)
	})
}

// TestListing verifies the seeker/guide projections.
func (s *EvaluationStoreSuite) TestListing() {
	seeker := id.UserID(uuid.New())
	guide := id.UserID(uuid.New())

	first := s.newRequest(seeker, guide)
	s.Require().NoError(s.store.CreateIfNoActive(s.ctx, first))
	first.ApplyReject("", time.Now())
	s.Require().NoError(s.store.ResolveFromPending(s.ctx, first))

	second := s.newRequest(seeker, id.UserID(uuid.New()))
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	s.Require().NoError(s.store.CreateIfNoActive(s.ctx, second))

	verified := s.newRequest(id.UserID(uuid.New()), guide)
	s.Require().NoError(s.store.CreateIfNoActive(s.ctx, verified))
	s.accept(verified, "999999")
	s.Require().NoError(s.store.MarkVerified(s.ctx, verified.ID, time.Now()))

	s.Run("seeker sees own requests newest first", func() {
		listed, err := s.store.ListBySeeker(s.ctx, seeker)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal(second.ID, listed[0].ID)
		s.Equal(first.ID, listed[1].ID)
	})

	s.Run("guide projection excludes verified rows", func() {
		listed, err := s.store.ListByGuide(s.ctx, guide)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal(first.ID, listed[0].ID)
	})
}
