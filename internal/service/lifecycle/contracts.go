package lifecycle

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// OrderReader provides order reads outside a transaction.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// EventPublisher announces committed order transitions. Publishing is
// best-effort: the outbox row written inside the transaction is the durable
// hand-off, events only shorten dispatch latency.
type EventPublisher interface {
	OrderAccepted(ctx context.Context, orderID int64) error
}
