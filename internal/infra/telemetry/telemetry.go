package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	pushOutcomes     *prometheus.CounterVec
	tokenRevocations prometheus.Counter
}

// Attach configures telemetry exporters and returns a provider handle.
// HTTP traffic metrics are owned by the transport middleware; the
// provider covers domain-level counters only.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	pushOutcomes := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "push_deliveries_total",
		Help:      "Push notification delivery attempts by outcome",
	}, []string{"outcome"})

	revocations := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "token_revocations_total",
		Help:      "Total number of session tokens revoked",
	})

	return &Provider{
		pushOutcomes:     pushOutcomes,
		tokenRevocations: revocations,
	}, nil
}

// ObservePushDelivery records a single push attempt outcome.
func (p *Provider) ObservePushDelivery(outcome string) {
	if p == nil || p.pushOutcomes == nil {
		return
	}
	p.pushOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveTokenRevocation records a revoked session token.
func (p *Provider) ObserveTokenRevocation() {
	if p == nil || p.tokenRevocations == nil {
		return
	}
	p.tokenRevocations.Inc()
}
