package domain

import "time"

// Courier represents a delivery courier.
type Courier struct {
	ID                 int64
	Name               string
	Phone              string
	Email              string
	VehicleType        string
	VehicleNumber      string
	Status             CourierStatus
	Active             bool
	Location           *Location
	LastLocationUpdate *time.Time
}

// Eligible reports whether the courier can be solicited for a new order.
func (c *Courier) Eligible() bool {
	return c.Active && c.Status == CourierAvailable && c.Location != nil
}

// NearbyCourier is a courier paired with its distance from the search
// origin, as produced by the proximity query.
type NearbyCourier struct {
	Courier    Courier
	DistanceKm float64
}
