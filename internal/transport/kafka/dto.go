package kafka

import "time"

// OrderAcceptedEvent is published after the PENDING -> ACCEPTED commit and
// consumed by the dispatch worker.
type OrderAcceptedEvent struct {
	OrderID    int64     `json:"order_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}
