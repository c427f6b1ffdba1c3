package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
)

// FCMClient implements port.PushProvider against the FCM HTTP API.
type FCMClient struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFCMClient constructs an FCM-backed push provider.
func NewFCMClient(cfg config.PushSettings, logger *zap.Logger) (*FCMClient, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &FCMClient{
		endpoint:   endpoint,
		serverKey:  strings.TrimSpace(cfg.ServerKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Credential returns the provider access credential for this broadcast.
// Fetched fresh per call; never cached across broadcasts.
func (c *FCMClient) Credential(ctx context.Context) (string, error) {
	if c.serverKey == "" {
		return "", fmt.Errorf("push: server key not configured")
	}
	return c.serverKey, nil
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send submits one message to one device token and returns the raw
// provider response. A non-2xx status is returned as a response, not an
// error; errors are reserved for transport failures.
func (c *FCMClient) Send(ctx context.Context, credential, deviceToken, title, body string, data map[string]string) (*port.PushResponse, error) {
	message := fcmMessage{
		To: deviceToken,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("push: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("push: build request: %w", err)
	}

	req.Header.Set("Authorization", "key="+credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push: send message: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("push: read response: %w", err)
	}

	return &port.PushResponse{
		StatusCode: resp.StatusCode,
		Body:       string(responseBody),
	}, nil
}

var _ port.PushProvider = (*FCMClient)(nil)
