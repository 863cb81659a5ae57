package domain

// Restaurant supplies the proximity origin for dispatch.
type Restaurant struct {
	ID       int64
	Name     string
	Address  string
	Phone    string
	Email    string
	Active   bool
	Location *Location
}
