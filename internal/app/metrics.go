package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// register adds the collector to the default registry, reusing the existing
// one when the container is built more than once in the same process.
func register[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
