//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"peakform/internal/evaluation/models"
	"peakform/internal/evaluation/store/postgres"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
	"peakform/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "evaluation_requests"))
}

func newTestRequest(s *suite.Suite, seeker, guide id.UserID) *models.EvaluationRequest {
	req, err := models.NewEvaluationRequest(
		id.NewEvaluationID(), seeker, guide,
		"Looking to get evaluated for track season", time.Now().UTC())
	s.Require().NoError(err)
	return req
}

func acceptRequest(s *suite.Suite, req *models.EvaluationRequest, code string) {
	sched, err := models.ScheduleInput{
		ModeratorMessage: "See you at the track",
		Date:             "2025-03-10",
		Time:             "09:00",
		Location:         "City Track Field",
		Equipment:        "stopwatch, cones",
	}.Validate()
	s.Require().NoError(err)
	req.ApplyAccept(sched, code, time.Now().UTC())
}

// TestRoundTrip verifies all columns survive a write/read cycle, including
// the DATE column's calendar semantics and the equipment array.
func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	req := newTestRequest(&s.Suite, id.UserID(uuid.New()), id.UserID(uuid.New()))
	s.Require().NoError(s.store.CreateIfNoActive(ctx, req))
	acceptRequest(&s.Suite, req, "483920")
	s.Require().NoError(s.store.ResolveFromPending(ctx, req))

	found, err := s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusAccepted, found.Status)
	s.Equal("483920", found.VerificationCode)
	s.Equal("2025-03-10", found.ScheduledDate.String())
	s.Equal("09:00", found.ScheduledTime)
	s.Equal([]string{"stopwatch", "cones"}, found.Equipment)
}

// TestConcurrentCreation verifies the partial unique index serializes racing
// creations for the same pair: exactly one insert wins.
func (s *PostgresStoreSuite) TestConcurrentCreation() {
	ctx := context.Background()
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())
	const goroutines = 25

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfNoActive(ctx, newTestRequest(&s.Suite, seeker, guide))
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

// TestRejectedPairCanRequestAgain verifies only active statuses occupy the
// unique index.
func (s *PostgresStoreSuite) TestRejectedPairCanRequestAgain() {
	ctx := context.Background()
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())

	first := newTestRequest(&s.Suite, seeker, guide)
	s.Require().NoError(s.store.CreateIfNoActive(ctx, first))
	first.ApplyReject("not this season", time.Now().UTC())
	s.Require().NoError(s.store.ResolveFromPending(ctx, first))

	rejectedAt, err := s.store.LatestRejectionAt(ctx, seeker, guide)
	s.Require().NoError(err)
	s.WithinDuration(first.UpdatedAt, rejectedAt, time.Second)

	s.Require().NoError(s.store.CreateIfNoActive(ctx, newTestRequest(&s.Suite, seeker, guide)))
}

// TestConditionalTransitions verifies the status-guarded UPDATEs.
func (s *PostgresStoreSuite) TestConditionalTransitions() {
	ctx := context.Background()

	s.Run("double resolve loses", func() {
		req := newTestRequest(&s.Suite, id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(ctx, req))

		accepted := *req
		acceptRequest(&s.Suite, &accepted, "111111")
		s.Require().NoError(s.store.ResolveFromPending(ctx, &accepted))

		rejected := *req
		rejected.ApplyReject("", time.Now().UTC())
		s.Require().ErrorIs(s.store.ResolveFromPending(ctx, &rejected), sentinel.ErrInvalidState)
	})

	s.Run("resolve of missing row reports not found", func() {
		ghost := newTestRequest(&s.Suite, id.UserID(uuid.New()), id.UserID(uuid.New()))
		ghost.ApplyReject("", time.Now().UTC())
		s.Require().ErrorIs(s.store.ResolveFromPending(ctx, ghost), sentinel.ErrNotFound)
	})

	s.Run("concurrent redemption has one winner", func() {
		req := newTestRequest(&s.Suite, id.UserID(uuid.New()), id.UserID(uuid.New()))
		s.Require().NoError(s.store.CreateIfNoActive(ctx, req))
		acceptRequest(&s.Suite, req, "222222")
		s.Require().NoError(s.store.ResolveFromPending(ctx, req))

		const goroutines = 10
		var wg sync.WaitGroup
		var wins atomic.Int32
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.store.MarkVerified(ctx, req.ID, time.Now().UTC()); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())

		_, err := s.store.FindByGuideAndCode(ctx, req.GuideID, "222222")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestDeleteByCode verifies the cleanup path's row accounting.
func (s *PostgresStoreSuite) TestDeleteByCode() {
	ctx := context.Background()
	seeker, guide := id.UserID(uuid.New()), id.UserID(uuid.New())

	req := newTestRequest(&s.Suite, seeker, guide)
	s.Require().NoError(s.store.CreateIfNoActive(ctx, req))
	acceptRequest(&s.Suite, req, "483920")
	s.Require().NoError(s.store.ResolveFromPending(ctx, req))

	s.Run("unknown code removes nothing", func() {
		removed, err := s.store.DeleteByCode(ctx, guide, "999999", nil)
		s.Require().NoError(err)
		s.Zero(removed)
	})

	s.Run("seeker filter must match", func() {
		other := id.UserID(uuid.New())
		removed, err := s.store.DeleteByCode(ctx, guide, "483920", &other)
		s.Require().NoError(err)
		s.Zero(removed)
	})

	s.Run("matching code is removed", func() {
		removed, err := s.store.DeleteByCode(ctx, guide, "483920", &seeker)
		s.Require().NoError(err)
		s.Equal(int64(1), removed)

		_, err = s.store.FindByID(ctx, req.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
