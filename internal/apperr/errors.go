package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition indicates that the requested order transition is not
// legal from the current status.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrAlreadyAssigned indicates that the order already has an assigned courier.
// Losers of an acceptance race always observe this error.
var ErrAlreadyAssigned = errors.New("order already assigned")

// ErrCourierUnavailable indicates that the courier is not in the available
// status and cannot take an order.
var ErrCourierUnavailable = errors.New("courier unavailable")

// ErrNotAssignedCourier indicates that a pickup or delivery was attempted by
// a courier who is not assigned to the order.
var ErrNotAssignedCourier = errors.New("courier not assigned to this order")
