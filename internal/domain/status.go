package domain

import "regexp"

type (
	// OrderStatus represents the status of an order.
	OrderStatus string
	// CourierStatus represents the status of a courier.
	CourierStatus string
)

// List of possible order statuses
const (
	OrderPending          OrderStatus = "PENDING"
	OrderAccepted         OrderStatus = "ACCEPTED"
	OrderAssigned         OrderStatus = "ASSIGNED"
	OrderPickedUp         OrderStatus = "PICKED_UP"
	OrderDelivered        OrderStatus = "DELIVERED"
	OrderCancelled        OrderStatus = "CANCELLED"
	OrderUnassigned       OrderStatus = "UNASSIGNED"
	OrderAssignmentFailed OrderStatus = "ASSIGNMENT_FAILED"
)

// List of possible courier statuses
const (
	CourierAvailable CourierStatus = "AVAILABLE"
	CourierBusy      CourierStatus = "BUSY"
	CourierOffline   CourierStatus = "OFFLINE"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderAccepted, OrderAssigned, OrderPickedUp,
	OrderDelivered, OrderCancelled, OrderUnassigned, OrderAssignmentFailed,
}

var allowedCourierStatuses = [...]CourierStatus{
	CourierAvailable, CourierBusy, CourierOffline,
}

// legalTransitions enumerates every legal order transition. Anything not
// listed here is rejected.
var legalTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderAssigned, OrderUnassigned, OrderAssignmentFailed},
	OrderAssigned: {OrderPickedUp},
	OrderPickedUp: {OrderDelivered},
}

// Valid checks if the OrderStatus is valid.
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, v := range legalTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s OrderStatus) Terminal() bool {
	return len(legalTransitions[s]) == 0
}

// Valid checks if the CourierStatus is valid.
func (s CourierStatus) Valid() bool {
	for _, v := range allowedCourierStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// rePhone matches E.164 phone numbers.
var rePhone = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// ValidatePhone validates the phone number format.
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
