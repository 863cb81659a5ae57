package handlers

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/service/arbiter"
	"delivery-dispatch/internal/service/lifecycle"
)

type lifecycleUsecase interface {
	Accept(ctx context.Context, orderID int64) error
	Reject(ctx context.Context, orderID int64, reason string) error
	Pickup(ctx context.Context, orderID, courierID int64) error
	Deliver(ctx context.Context, orderID, courierID int64) error
}

// NewLifecycleUsecase wires a lifecycle Service into a lifecycleUsecase.
func NewLifecycleUsecase(svc *lifecycle.Service) lifecycleUsecase {
	return svc
}

type arbiterUsecase interface {
	Accept(ctx context.Context, orderID, courierID int64) error
}

// NewArbiterUsecase wires an arbiter Service into an arbiterUsecase.
func NewArbiterUsecase(svc *arbiter.Service) arbiterUsecase {
	return svc
}

type courierStore interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	UpdateLocation(ctx context.Context, id int64, loc domain.Location, at time.Time) (bool, error)
}

// NewCourierStore wires a CourierRepo into a courierStore.
func NewCourierStore(repo *repository.CourierRepo) courierStore {
	return repo
}
