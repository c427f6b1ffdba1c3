package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
)

const defaultDispatchConcurrency = 8

// NotificationDispatcher fans a push message out to a set of device
// tokens. Each token is submitted independently so one bad registration
// cannot mask or abort delivery to the rest, and provider-reported
// invalid tokens are collected for the caller to prune.
type NotificationDispatcher struct {
	provider port.PushProvider
	cfg      config.NotifySettings
	metrics  DeliveryMetrics
	logger   *zap.Logger
}

// DeliveryMetrics counts per-token push outcomes.
type DeliveryMetrics interface {
	ObservePushDelivery(outcome string)
}

// NewNotificationDispatcher constructs a NotificationDispatcher instance.
func NewNotificationDispatcher(provider port.PushProvider, cfg config.NotifySettings, log *zap.Logger) (*NotificationDispatcher, error) {
	if provider == nil {
		return nil, fmt.Errorf("push provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &NotificationDispatcher{
		provider: provider,
		cfg:      cfg,
		logger:   log,
	}, nil
}

// WithMetrics attaches delivery counters.
func (d *NotificationDispatcher) WithMetrics(metrics DeliveryMetrics) {
	d.metrics = metrics
}

func (d *NotificationDispatcher) observe(outcome string) {
	if d.metrics != nil {
		d.metrics.ObservePushDelivery(outcome)
	}
}

// Broadcast submits the message to every device token and aggregates the
// per-token outcomes. The only fatal failure is credential acquisition;
// everything after that is recorded per token and reported in the result.
// The caller owns pruning InvalidTokens from device registrations.
func (d *NotificationDispatcher) Broadcast(ctx context.Context, deviceTokens []string, title, body string, data map[string]string) (*domain.DispatchResult, error) {
	tokens := normalizeTokens(deviceTokens)
	if len(tokens) == 0 {
		return &domain.DispatchResult{
			Status: domain.DispatchSuccess,
			Detail: "no eligible recipients",
		}, nil
	}

	credential, err := d.provider.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch push credential: %w", err)
	}

	if d.cfg.BroadcastTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.BroadcastTimeout)
		defer cancel()
	}

	outcomes := d.fanOut(ctx, credential, tokens, title, body, data)

	result := &domain.DispatchResult{Outcomes: outcomes}
	failed := 0
	for _, outcome := range outcomes {
		if !submissionFailed(outcome) {
			d.observe("delivered")
			continue
		}
		failed++
		if tokenUnregistered(outcome) {
			result.InvalidTokens = append(result.InvalidTokens, outcome.Token)
			d.observe("invalid_token")
		} else {
			d.observe("failed")
		}
	}

	switch {
	case failed == 0:
		result.Status = domain.DispatchSuccess
		result.Detail = fmt.Sprintf("delivered to %d recipients", len(outcomes))
	case len(result.InvalidTokens) > 0:
		result.Status = domain.DispatchPartialFailure
		result.Detail = fmt.Sprintf("%d of %d deliveries failed, %d invalid tokens", failed, len(outcomes), len(result.InvalidTokens))
	default:
		result.Status = domain.DispatchProviderFailure
		result.Detail = fmt.Sprintf("%d of %d deliveries failed", failed, len(outcomes))
	}

	if result.Status != domain.DispatchSuccess {
		d.logger.Warn("broadcast completed with failures",
			zap.String("status", string(result.Status)),
			zap.String("detail", result.Detail),
		)
	}

	return result, nil
}

// fanOut submits one message per token through a bounded worker pool and
// returns the outcomes in input order.
func (d *NotificationDispatcher) fanOut(ctx context.Context, credential string, tokens []string, title, body string, data map[string]string) []domain.PushOutcome {
	concurrency := d.cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = defaultDispatchConcurrency
	}
	if concurrency > len(tokens) {
		concurrency = len(tokens)
	}

	outcomes := make([]domain.PushOutcome, len(tokens))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for worker := 0; worker < concurrency; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = d.submit(ctx, credential, tokens[i], title, body, data)
			}
		}()
	}

	for i := range tokens {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

func (d *NotificationDispatcher) submit(ctx context.Context, credential, token, title, body string, data map[string]string) domain.PushOutcome {
	outcome := domain.PushOutcome{Token: token}

	resp, err := d.provider.Send(ctx, credential, token, title, body, data)
	if err != nil {
		outcome.Err = err.Error()
		d.logger.Warn("push submission failed",
			zap.String("device_token", logger.MaskToken(token)),
			zap.Error(err),
		)
		return outcome
	}

	outcome.StatusCode = resp.StatusCode
	outcome.ResponseBody = resp.Body
	return outcome
}

// invalidTokenMarkers are the provider error codes that mean the device
// registration itself is stale and should be pruned.
var invalidTokenMarkers = map[string]struct{}{
	"NotRegistered":       {},
	"InvalidRegistration": {},
	"UNREGISTERED":        {},
	"MismatchSenderId":    {},
}

// pushResponseBody is the subset of the provider's per-token response we
// inspect. The body is parsed defensively; anything unparsable is treated
// as an opaque error, never an invalid-token signal.
type pushResponseBody struct {
	Error   string `json:"error"`
	Failure int    `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func parseResponseBody(body string) (pushResponseBody, bool) {
	var parsed pushResponseBody
	if body == "" {
		return parsed, false
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return pushResponseBody{}, false
	}
	return parsed, true
}

// submissionFailed reports whether the provider rejected the message. The
// legacy FCM API answers HTTP 200 and signals per-token failures inside
// the body, so a clean HTTP exchange alone does not mean delivery.
func submissionFailed(outcome domain.PushOutcome) bool {
	if !outcome.Delivered() {
		return true
	}

	parsed, ok := parseResponseBody(outcome.ResponseBody)
	if !ok {
		return false
	}
	if parsed.Error != "" || parsed.Failure > 0 {
		return true
	}
	for _, result := range parsed.Results {
		if result.Error != "" {
			return true
		}
	}
	return false
}

func tokenUnregistered(outcome domain.PushOutcome) bool {
	parsed, ok := parseResponseBody(outcome.ResponseBody)
	if !ok {
		return false
	}

	if _, ok := invalidTokenMarkers[parsed.Error]; ok {
		return true
	}
	for _, result := range parsed.Results {
		if _, ok := invalidTokenMarkers[result.Error]; ok {
			return true
		}
	}
	return false
}

// normalizeTokens strips blanks and removes duplicates while preserving
// first-seen order.
func normalizeTokens(deviceTokens []string) []string {
	seen := make(map[string]struct{}, len(deviceTokens))
	tokens := make([]string, 0, len(deviceTokens))
	for _, token := range deviceTokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}
