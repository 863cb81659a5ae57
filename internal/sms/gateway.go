package sms

import "context"

// Gateway sends a single SMS and returns the provider message id. Sends are
// best-effort: a failed send is reported as an error but callers never treat
// it as fatal.
type Gateway interface {
	Send(ctx context.Context, toPhone, body string) (string, error)
}
