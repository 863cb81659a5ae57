package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a unit of work moving through the delivery state machine.
// AssignedCourierID is non-nil exactly while status is one of
// ASSIGNED, PICKED_UP, DELIVERED.
type Order struct {
	ID                int64
	RestaurantID      int64
	CustomerName      string
	CustomerPhone     string
	DeliveryAddress   string
	TotalAmount       decimal.Decimal
	Status            OrderStatus
	CreatedAt         time.Time
	AcceptedAt        *time.Time
	DeliveredAt       *time.Time
	AssignedCourierID *int64
	Items             []OrderItem
}

// OrderItem is a single line item. Items are immutable after creation.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// AssignedTo reports whether courierID is the courier assigned to the order.
func (o *Order) AssignedTo(courierID int64) bool {
	return o.AssignedCourierID != nil && *o.AssignedCourierID == courierID
}
