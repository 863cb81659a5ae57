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

type OrderRepositorySuite struct {
	suite.Suite
	repo   *repository.OrderRepo
	outbox *repository.OutboxRepo
}

func (s *OrderRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")
	s.repo = repository.NewOrderRepo(tcPool)
	s.outbox = repository.NewOutboxRepo(tcPool)
}

func (s *OrderRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), tcPool))
}

func (s *OrderRepositorySuite) seed(status domain.OrderStatus) (orderID, restaurantID int64) {
	ctx := context.Background()
	restaurantID, err := seedRestaurant(ctx, tcPool, 37.62, 55.75)
	s.Require().NoError(err)
	orderID, err = seedOrder(ctx, tcPool, restaurantID, status)
	s.Require().NoError(err)
	return orderID, restaurantID
}

func (s *OrderRepositorySuite) TestGet() {
	orderID, restaurantID := s.seed(domain.OrderPending)

	got, err := s.repo.Get(context.Background(), orderID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(orderID, got.ID)
	s.Equal(restaurantID, got.RestaurantID)
	s.Equal(domain.OrderPending, got.Status)
	s.Equal("42.5", got.TotalAmount.String())
	s.Nil(got.AssignedCourierID)
	s.Nil(got.AcceptedAt)
}

func (s *OrderRepositorySuite) TestGetNotFound() {
	got, err := s.repo.Get(context.Background(), 9999)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *OrderRepositorySuite) TestWithTx_AcceptWritesOutboxRow() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderPending)

	now := time.Now().UTC()
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderAccepted, &now, nil); err != nil {
			return err
		}
		return tx.EnqueueDispatch(ctx, orderID)
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderAccepted, got.Status)
	s.Require().NotNil(got.AcceptedAt)

	jobs, err := s.outbox.Claim(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(jobs, 1)
	s.Equal(orderID, jobs[0].OrderID)
}

func (s *OrderRepositorySuite) TestWithTx_RollbackOnError() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderPending)

	now := time.Now().UTC()
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderAccepted, &now, nil); err != nil {
			return err
		}
		return context.Canceled // any error rolls the tx back
	})
	s.Require().Error(err)

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderPending, got.Status)
}

func (s *OrderRepositorySuite) TestTryAssign_OnlyFirstWins() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderAccepted)

	winner, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)
	loser, err := seedCourier(ctx, tcPool, "+79990000002", domain.CourierAvailable, true, 37.64, 55.75)
	s.Require().NoError(err)

	var firstOK, secondOK bool
	s.Require().NoError(s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		var err error
		firstOK, err = tx.TryAssign(ctx, orderID, winner)
		return err
	}))
	s.Require().NoError(s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		var err error
		secondOK, err = tx.TryAssign(ctx, orderID, loser)
		return err
	}))

	s.True(firstOK)
	s.False(secondOK)

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderAssigned, got.Status)
	s.Require().NotNil(got.AssignedCourierID)
	s.Equal(winner, *got.AssignedCourierID)
}

func (s *OrderRepositorySuite) TestMarkDispatchTerminal_SkipsAssignedOrder() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderAccepted)

	courierID, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		_, err := tx.TryAssign(ctx, orderID, courierID)
		return err
	}))

	ok, err := s.repo.MarkDispatchTerminal(ctx, orderID, domain.OrderUnassigned)
	s.Require().NoError(err)
	s.False(ok, "assigned order must not be clobbered")

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderAssigned, got.Status)
}

func (s *OrderRepositorySuite) TestMarkDispatchTerminal_MarksAcceptedOrder() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderAccepted)

	ok, err := s.repo.MarkDispatchTerminal(ctx, orderID, domain.OrderUnassigned)
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderUnassigned, got.Status)
}

func (s *OrderRepositorySuite) TestReapStale() {
	ctx := context.Background()
	orderID, _ := s.seed(domain.OrderAccepted)

	_, err := tcPool.Exec(ctx,
		`UPDATE orders SET accepted_at = now() - interval '2 hours' WHERE id = $1`, orderID)
	s.Require().NoError(err)

	n, err := s.repo.ReapStale(ctx, time.Now().UTC().Add(-time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got, err := s.repo.Get(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.OrderUnassigned, got.Status)
}

func (s *OrderRepositorySuite) TestUpdateCourierStatusInTx() {
	ctx := context.Background()
	courierID, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.UpdateCourierStatus(ctx, courierID, domain.CourierBusy)
	}))

	courierRepo := repository.NewCourierRepo(tcPool)
	got, err := courierRepo.Get(ctx, courierID)
	s.Require().NoError(err)
	s.Equal(domain.CourierBusy, got.Status)
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositorySuite))
}
