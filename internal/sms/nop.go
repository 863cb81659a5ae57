package sms

import (
	"context"

	"delivery-dispatch/internal/logx"
)

// NopGateway logs messages instead of sending them. Used in development and
// when SMS is disabled; the engine treats both paths identically.
type NopGateway struct {
	logger logx.Logger
}

// NewNopGateway creates a logging no-op gateway.
func NewNopGateway(logger logx.Logger) *NopGateway {
	return &NopGateway{logger: logger}
}

// Send logs the message and reports success.
func (g *NopGateway) Send(_ context.Context, toPhone, body string) (string, error) {
	g.logger.Info("sms disabled, message not sent",
		logx.String("to", toPhone),
		logx.String("body", body),
	)
	return "SMS_DISABLED", nil
}

var _ Gateway = (*NopGateway)(nil)
