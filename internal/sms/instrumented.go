package sms

import (
	"context"

	"delivery-dispatch/internal/logx"
)

type counter interface {
	Inc()
}

// InstrumentedGateway wraps a Gateway with send/failure counters and logging.
type InstrumentedGateway struct {
	next   Gateway
	logger logx.Logger
	sent   counter
	failed counter
}

// NewInstrumentedGateway decorates next with metrics. Returns nil if next is nil.
func NewInstrumentedGateway(next Gateway, logger logx.Logger, sent, failed counter) *InstrumentedGateway {
	if next == nil {
		return nil
	}
	return &InstrumentedGateway{next: next, logger: logger, sent: sent, failed: failed}
}

// Send forwards to the wrapped gateway and records the outcome.
func (g *InstrumentedGateway) Send(ctx context.Context, toPhone, body string) (string, error) {
	id, err := g.next.Send(ctx, toPhone, body)
	if err != nil {
		if g.failed != nil {
			g.failed.Inc()
		}
		g.logger.Error("sms send failed",
			logx.String("to", toPhone),
			logx.Err(err),
		)
		return "", err
	}
	if g.sent != nil {
		g.sent.Inc()
	}
	return id, nil
}

var _ Gateway = (*InstrumentedGateway)(nil)
