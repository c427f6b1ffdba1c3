package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, principalID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("principal_id", principalID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishPrincipalRegistered logs catalog.user.registered events.
func (p *StubPublisher) PublishPrincipalRegistered(_ context.Context, event domain.PrincipalRegisteredEvent) error {
	payload := map[string]any{
		"principal_id":  event.PrincipalID,
		"email":         event.Email,
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.registered", event.PrincipalID, event.RegisteredAt, payload)
	return nil
}

// PublishTokenRevoked logs catalog.token.revoked events.
func (p *StubPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	payload := map[string]any{
		"jti":          event.JTI,
		"principal_id": event.PrincipalID,
		"expires_at":   event.ExpiresAt,
		"revoked_at":   event.RevokedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("token.revoked", event.PrincipalID, event.RevokedAt, payload)
	return nil
}

// PublishSubscriptionReconciled logs catalog.subscription.reconciled events.
func (p *StubPublisher) PublishSubscriptionReconciled(_ context.Context, event domain.SubscriptionReconciledEvent) error {
	payload := map[string]any{
		"principal_id":             event.PrincipalID,
		"plan_code":                event.PlanCode,
		"external_subscription_id": event.ExternalSubscriptionID,
		"expires_at":               event.ExpiresAt,
		"reconciled_at":            event.ReconciledAt,
		"metadata":                 event.Metadata,
	}
	p.logEvent("subscription.reconciled", event.PrincipalID, event.ReconciledAt, payload)
	return nil
}

// PublishMovieAdded logs catalog.movie.added events.
func (p *StubPublisher) PublishMovieAdded(_ context.Context, event domain.MovieAddedEvent) error {
	payload := map[string]any{
		"movie_id": event.MovieID,
		"title":    event.Title,
		"premium":  event.Premium,
		"added_at": event.AddedAt,
		"metadata": event.Metadata,
	}
	p.logEvent("movie.added", "", event.AddedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
