package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
)

// StripeClient implements port.PaymentProvider against the Stripe REST API.
// Requests are form-encoded per the Stripe wire format.
type StripeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStripeClient constructs a Stripe-backed payment provider.
func NewStripeClient(cfg config.BillingSettings, logger *zap.Logger) (*StripeClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("billing: api key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &StripeClient{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type customerPayload struct {
	ID string `json:"id"`
}

type checkoutSessionPayload struct {
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type errorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCustomer registers a billing customer and returns its identifier.
func (c *StripeClient) CreateCustomer(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)

	var payload customerPayload
	if err := c.do(ctx, http.MethodPost, "/customers", form, &payload); err != nil {
		return "", err
	}
	if payload.ID == "" {
		return "", fmt.Errorf("billing: customer response missing id")
	}

	return payload.ID, nil
}

// CreateCheckoutSession opens a hosted checkout page for a subscription purchase.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req port.CheckoutSessionRequest) (*port.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", req.CustomerID)
	form.Set("line_items[0][price]", req.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var payload checkoutSessionPayload
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &payload); err != nil {
		return nil, err
	}

	return sessionFromPayload(payload), nil
}

// RetrieveCheckoutSession fetches the provider's view of a checkout session.
func (c *StripeClient) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*port.CheckoutSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("billing: session id is required")
	}

	var payload checkoutSessionPayload
	path := "/checkout/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	return sessionFromPayload(payload), nil
}

func sessionFromPayload(payload checkoutSessionPayload) *port.CheckoutSession {
	return &port.CheckoutSession{
		SessionID:      payload.ID,
		CheckoutURL:    payload.URL,
		CustomerID:     payload.Customer,
		SubscriptionID: payload.Subscription,
		Metadata:       payload.Metadata,
	}
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("billing: build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("billing: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorPayload
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("billing: %s %s: %s (%s)", method, path, apiErr.Error.Message, apiErr.Error.Type)
		}
		return fmt.Errorf("billing: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("billing: decode response: %w", err)
		}
	}

	return nil
}

var _ port.PaymentProvider = (*StripeClient)(nil)
