package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway sends SMS through the Twilio REST API.
type TwilioGateway struct {
	client    *twilio.RestClient
	fromPhone string
}

// NewTwilioGateway creates a Twilio-backed SMS gateway.
func NewTwilioGateway(accountSID, authToken, fromPhone string) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{client: client, fromPhone: fromPhone}
}

// Send delivers one message and returns the Twilio message SID.
func (g *TwilioGateway) Send(_ context.Context, toPhone, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(g.fromPhone)
	params.SetBody(body)

	msg, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send to %s: %w", toPhone, err)
	}
	if msg.Sid == nil {
		return "", fmt.Errorf("twilio send to %s: no message sid in response", toPhone)
	}
	return *msg.Sid, nil
}

var _ Gateway = (*TwilioGateway)(nil)
