//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/ports/ordertx"
	"delivery-dispatch/internal/repository"
)

type OutboxRepositorySuite struct {
	suite.Suite
	repo   *repository.OutboxRepo
	orders *repository.OrderRepo
}

func (s *OutboxRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")
	s.repo = repository.NewOutboxRepo(tcPool)
	s.orders = repository.NewOrderRepo(tcPool)
}

func (s *OutboxRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), tcPool))
}

func (s *OutboxRepositorySuite) enqueue(n int) []int64 {
	ctx := context.Background()
	restaurantID, err := seedRestaurant(ctx, tcPool, 37.62, 55.75)
	s.Require().NoError(err)

	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		orderID, err := seedOrder(ctx, tcPool, restaurantID, domain.OrderAccepted)
		s.Require().NoError(err)
		s.Require().NoError(s.orders.WithTx(ctx, func(tx ordertx.Repository) error {
			return tx.EnqueueDispatch(ctx, orderID)
		}))
		out = append(out, orderID)
	}
	return out
}

func (s *OutboxRepositorySuite) TestClaim() {
	orderIDs := s.enqueue(3)
	ctx := context.Background()

	jobs, err := s.repo.Claim(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(jobs, 2)
	s.Equal(orderIDs[0], jobs[0].OrderID)
	s.Equal(orderIDs[1], jobs[1].OrderID)

	// A second claim must not return the same rows.
	rest, err := s.repo.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal(orderIDs[2], rest[0].OrderID)
}

func (s *OutboxRepositorySuite) TestClaimByOrder() {
	orderIDs := s.enqueue(2)
	ctx := context.Background()

	job, err := s.repo.ClaimByOrder(ctx, orderIDs[1])
	s.Require().NoError(err)
	s.Require().NotNil(job)
	s.Equal(orderIDs[1], job.OrderID)

	// Already claimed: the poller fast-path gets nothing.
	again, err := s.repo.ClaimByOrder(ctx, orderIDs[1])
	s.Require().NoError(err)
	s.Nil(again)

	// The other order is untouched.
	jobs, err := s.repo.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(jobs, 1)
	s.Equal(orderIDs[0], jobs[0].OrderID)
}

func (s *OutboxRepositorySuite) TestDoneAndReleaseStale() {
	s.enqueue(2)
	ctx := context.Background()

	jobs, err := s.repo.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(jobs, 2)

	s.Require().NoError(s.repo.Done(ctx, jobs[0].ID))

	// Age the unfinished claim past the cutoff.
	_, err = tcPool.Exec(ctx,
		`UPDATE dispatch_outbox SET picked_at = now() - interval '2 hours' WHERE id = $1`, jobs[1].ID)
	s.Require().NoError(err)

	n, err := s.repo.ReleaseStale(ctx, time.Now().UTC().Add(-time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, n)

	// The released job is claimable again; the done one is not.
	requeued, err := s.repo.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(requeued, 1)
	s.Equal(jobs[1].OrderID, requeued[0].OrderID)
}

func (s *OutboxRepositorySuite) TestEnqueueTwiceKeepsOneRow() {
	orderIDs := s.enqueue(1)
	ctx := context.Background()

	err := s.orders.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.EnqueueDispatch(ctx, orderIDs[0])
	})
	s.Require().NoError(err)

	jobs, err := s.repo.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Len(jobs, 1)
}

func (s *OutboxRepositorySuite) TestDoneUnknownJob() {
	err := s.repo.Done(context.Background(), 9999)
	s.Require().Error(err)
}

func TestOutboxRepositorySuite(t *testing.T) {
	suite.Run(t, new(OutboxRepositorySuite))
}
