package dispatch

import (
	"context"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/repository"
)

// OrderStore is the subset of order storage the engine reads and writes.
type OrderStore interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	MarkDispatchTerminal(ctx context.Context, id int64, status domain.OrderStatus) (bool, error)
	ReapStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// CourierStore runs the proximity query.
type CourierStore interface {
	NearestAvailable(ctx context.Context, lon, lat float64, limit int) ([]domain.NearbyCourier, error)
}

// RestaurantStore loads the proximity origin.
type RestaurantStore interface {
	Get(ctx context.Context, id int64) (*domain.Restaurant, error)
}

// JobQueue is the dispatch outbox.
type JobQueue interface {
	Claim(ctx context.Context, limit int) ([]repository.DispatchJob, error)
	ClaimByOrder(ctx context.Context, orderID int64) (*repository.DispatchJob, error)
	Done(ctx context.Context, id int64) error
	ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error)
}
