package ordertx

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
)

// Repository is the set of store operations available inside an order
// transaction. All writes to order status and assignment go through it.
type Repository interface {
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	GetCourier(ctx context.Context, id int64) (*domain.Courier, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, acceptedAt, deliveredAt *time.Time) error
	TryAssign(ctx context.Context, orderID, courierID int64) (bool, error)
	UpdateCourierStatus(ctx context.Context, id int64, status domain.CourierStatus) error
	EnqueueDispatch(ctx context.Context, orderID int64) error
}

// Runner is a transaction runner.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
