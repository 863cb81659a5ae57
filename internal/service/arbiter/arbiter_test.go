package arbiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/ports/ordertx"
	"delivery-dispatch/internal/service/arbiter"
)

// fakeStore is an in-memory ordertx.Runner. WithTx runs fn against the store
// itself; tests only exercise paths where rollback does not matter.
type fakeStore struct {
	orders   map[int64]*domain.Order
	couriers map[int64]*domain.Courier

	// beforeTryAssign lets a test slip in a concurrent assignment between the
	// locked read and the conditional update.
	beforeTryAssign func(s *fakeStore)
}

func (s *fakeStore) WithTx(_ context.Context, fn func(tx ordertx.Repository) error) error {
	return fn(s)
}

func (s *fakeStore) GetOrderForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) GetCourier(_ context.Context, id int64) (*domain.Courier, error) {
	c, ok := s.couriers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus, acceptedAt, deliveredAt *time.Time) error {
	o := s.orders[id]
	o.Status = status
	if acceptedAt != nil {
		o.AcceptedAt = acceptedAt
	}
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	return nil
}

func (s *fakeStore) TryAssign(_ context.Context, orderID, courierID int64) (bool, error) {
	if s.beforeTryAssign != nil {
		s.beforeTryAssign(s)
	}
	o := s.orders[orderID]
	if o.Status != domain.OrderAccepted || o.AssignedCourierID != nil {
		return false, nil
	}
	o.Status = domain.OrderAssigned
	o.AssignedCourierID = &courierID
	return true, nil
}

func (s *fakeStore) UpdateCourierStatus(_ context.Context, id int64, status domain.CourierStatus) error {
	s.couriers[id].Status = status
	return nil
}

func (s *fakeStore) EnqueueDispatch(context.Context, int64) error { return nil }

func newStore() *fakeStore {
	return &fakeStore{
		orders: map[int64]*domain.Order{
			1: {ID: 1, RestaurantID: 10, Status: domain.OrderAccepted},
		},
		couriers: map[int64]*domain.Courier{
			7: {ID: 7, Name: "Lena", Status: domain.CourierAvailable, Active: true},
			8: {ID: 8, Name: "Marat", Status: domain.CourierAvailable, Active: true},
		},
	}
}

func newService(s *fakeStore) *arbiter.Service {
	return arbiter.NewService(s, time.Second, logx.Nop())
}

func TestAccept_FirstCourierWins(t *testing.T) {
	store := newStore()
	svc := newService(store)

	require.NoError(t, svc.Accept(context.Background(), 1, 7))

	order := store.orders[1]
	assert.Equal(t, domain.OrderAssigned, order.Status)
	require.NotNil(t, order.AssignedCourierID)
	assert.EqualValues(t, 7, *order.AssignedCourierID)
	assert.Equal(t, domain.CourierBusy, store.couriers[7].Status)
}

func TestAccept_SecondCourierRejected(t *testing.T) {
	store := newStore()
	svc := newService(store)

	require.NoError(t, svc.Accept(context.Background(), 1, 7))
	err := svc.Accept(context.Background(), 1, 8)

	require.ErrorIs(t, err, apperr.ErrAlreadyAssigned)
	assert.EqualValues(t, 7, *store.orders[1].AssignedCourierID)
	assert.Equal(t, domain.CourierAvailable, store.couriers[8].Status)
}

func TestAccept_WinnerReplayIsIdempotent(t *testing.T) {
	store := newStore()
	svc := newService(store)

	require.NoError(t, svc.Accept(context.Background(), 1, 7))
	require.NoError(t, svc.Accept(context.Background(), 1, 7))

	assert.EqualValues(t, 7, *store.orders[1].AssignedCourierID)
	assert.Equal(t, domain.CourierBusy, store.couriers[7].Status)
}

func TestAccept_LostRaceOnConditionalUpdate(t *testing.T) {
	store := newStore()
	other := int64(8)
	store.beforeTryAssign = func(s *fakeStore) {
		o := s.orders[1]
		o.Status = domain.OrderAssigned
		o.AssignedCourierID = &other
		s.beforeTryAssign = nil
	}
	svc := newService(store)

	err := svc.Accept(context.Background(), 1, 7)

	require.ErrorIs(t, err, apperr.ErrAlreadyAssigned)
	assert.EqualValues(t, 8, *store.orders[1].AssignedCourierID)
	assert.Equal(t, domain.CourierAvailable, store.couriers[7].Status)
}

func TestAccept_OrderNotFound(t *testing.T) {
	svc := newService(newStore())

	require.ErrorIs(t, svc.Accept(context.Background(), 99, 7), apperr.ErrNotFound)
}

func TestAccept_CourierNotFound(t *testing.T) {
	svc := newService(newStore())

	require.ErrorIs(t, svc.Accept(context.Background(), 1, 99), apperr.ErrNotFound)
}

func TestAccept_CourierBusy(t *testing.T) {
	store := newStore()
	store.couriers[7].Status = domain.CourierBusy
	svc := newService(store)

	require.ErrorIs(t, svc.Accept(context.Background(), 1, 7), apperr.ErrCourierUnavailable)
}

func TestAccept_OrderNotOpen(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
		want   error
	}{
		{"pending", domain.OrderPending, apperr.ErrInvalidTransition},
		{"cancelled", domain.OrderCancelled, apperr.ErrInvalidTransition},
		{"unassigned", domain.OrderUnassigned, apperr.ErrInvalidTransition},
		{"delivered", domain.OrderDelivered, apperr.ErrInvalidTransition},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore()
			store.orders[1].Status = tc.status
			svc := newService(store)

			require.ErrorIs(t, svc.Accept(context.Background(), 1, 7), tc.want)
		})
	}
}
