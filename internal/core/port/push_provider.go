package port

import "context"

// PushResponse is the raw provider answer for a single device token.
// The body is provider-specific JSON and must be parsed defensively.
type PushResponse struct {
	StatusCode int
	Body       string
}

// PushProvider abstracts the external push-notification service.
// Credential fetches a fresh access credential; Send submits one message
// to one device token.
type PushProvider interface {
	Credential(ctx context.Context) (string, error)
	Send(ctx context.Context, credential, deviceToken, title, body string, data map[string]string) (*PushResponse, error)
}
