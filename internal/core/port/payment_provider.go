package port

import "context"

// CheckoutSessionRequest carries everything the payment provider needs to
// open a hosted checkout page for a premium purchase.
type CheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the provider's descriptor of a pending purchase.
type CheckoutSession struct {
	SessionID      string
	CheckoutURL    string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// PaymentProvider abstracts the external billing service's checkout flow.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
