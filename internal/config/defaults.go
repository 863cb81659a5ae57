package config

import "time"

const defaultPort = 8080

const defaultPprofPort = 6060

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "delivery",
	Pass: "delivery",
	Name: "delivery_db",
}

var defaultDispatch = Dispatch{
	BatchSize:       20,
	BatchWindow:     120 * time.Second,
	MaxBatches:      10,
	InterBatchDelay: 2 * time.Second,
	PollInterval:    2 * time.Second,
	MaxConcurrent:   32,
	StaleAfter:      30 * time.Minute,
	BaseURL:         "http://localhost:8080",
}

var defaultKafka = Kafka{
	Topic:   "orders.accepted",
	GroupID: "dispatch-worker",
}

var defaultOutbox = Outbox{
	PollInterval: 5 * time.Second,
	BatchSize:    10,
}

var defaultRateLimit = RateLimit{
	Limit:  20,
	Window: time.Second,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int {
	return defaultPort
}

// DefaultPprofPort returns the default pprof port.
func DefaultPprofPort() int {
	return defaultPprofPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultDispatch returns the default dispatch engine settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultOutbox returns the default outbox poller settings.
func DefaultOutbox() Outbox {
	return defaultOutbox
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
