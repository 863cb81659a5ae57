package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewSMSSentTotal returns a Prometheus counter for successfully sent SMS notifications
func NewSMSSentTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sms_sent_total",
		Help: "Total number of SMS notifications sent successfully",
	})
}

// NewSMSSendFailedTotal returns a Prometheus counter for failed SMS send attempts
func NewSMSSendFailedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sms_send_failed_total",
		Help: "Total number of failed SMS send attempts",
	})
}

// NewDispatchBatchesTotal returns a Prometheus counter for executed solicitation batches
func NewDispatchBatchesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_batches_total",
		Help: "Total number of courier solicitation batches executed",
	})
}

// NewDispatchOutcomesTotal returns a Prometheus counter vector for terminal
// dispatch outcomes, labeled by outcome (assigned, unassigned, failed)
func NewDispatchOutcomesTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_outcomes_total",
		Help: "Total number of dispatches by terminal outcome",
	}, []string{"outcome"})
}
