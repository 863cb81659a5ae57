package app

import (
	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/sms"
)

// NewSMSGateway selects the SMS transport from config and wraps it with the
// send counters. With Twilio disabled the gateway only logs, which is what
// local and CI runs want.
func NewSMSGateway(cfg *config.Config, logger logx.Logger) sms.Gateway {
	var base sms.Gateway
	if cfg.Twilio.Enabled {
		base = sms.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromPhone)
	} else {
		base = sms.NewNopGateway(logger)
	}

	sent := register(metrics.NewSMSSentTotal())
	failed := register(metrics.NewSMSSendFailedTotal())
	return sms.NewInstrumentedGateway(base, logger, sent, failed)
}
