package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID     string           `json:"event_id"`
	EventType   string           `json:"event_type"`
	PrincipalID string           `json:"principal_id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Version     string           `json:"version"`
	Payload     any              `json:"payload"`
	Metadata    envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, principalID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:     id,
		EventType:   eventType,
		PrincipalID: principalID,
		Timestamp:   ts.UTC(),
		Version:     schemaVersion,
		Payload:     payload,
		Metadata:    metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishPrincipalRegistered publishes catalog.user.registered events.
func (p *EventPublisher) PublishPrincipalRegistered(ctx context.Context, event domain.PrincipalRegisteredEvent) error {
	payload := struct {
		PrincipalID  string         `json:"principal_id"`
		Email        string         `json:"email"`
		Role         string         `json:"role"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		PrincipalID:  event.PrincipalID,
		Email:        event.Email,
		Role:         event.Role,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.registered", event.PrincipalID, event.RegisteredAt, payload)
}

// PublishTokenRevoked publishes catalog.token.revoked events.
func (p *EventPublisher) PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error {
	payload := struct {
		JTI         string         `json:"jti"`
		PrincipalID string         `json:"principal_id"`
		ExpiresAt   time.Time      `json:"expires_at"`
		RevokedAt   time.Time      `json:"revoked_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		JTI:         event.JTI,
		PrincipalID: event.PrincipalID,
		ExpiresAt:   event.ExpiresAt.UTC(),
		RevokedAt:   event.RevokedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "token.revoked", event.PrincipalID, event.RevokedAt, payload)
}

// PublishSubscriptionReconciled publishes catalog.subscription.reconciled events.
func (p *EventPublisher) PublishSubscriptionReconciled(ctx context.Context, event domain.SubscriptionReconciledEvent) error {
	payload := struct {
		PrincipalID            string         `json:"principal_id"`
		PlanCode               string         `json:"plan_code"`
		ExternalSubscriptionID string         `json:"external_subscription_id"`
		ExpiresAt              time.Time      `json:"expires_at"`
		ReconciledAt           time.Time      `json:"reconciled_at"`
		Metadata               map[string]any `json:"metadata,omitempty"`
	}{
		PrincipalID:            event.PrincipalID,
		PlanCode:               event.PlanCode,
		ExternalSubscriptionID: event.ExternalSubscriptionID,
		ExpiresAt:              event.ExpiresAt.UTC(),
		ReconciledAt:           event.ReconciledAt.UTC(),
		Metadata:               event.Metadata,
	}

	return p.publish(ctx, event.EventID, "subscription.reconciled", event.PrincipalID, event.ReconciledAt, payload)
}

// PublishMovieAdded publishes catalog.movie.added events.
func (p *EventPublisher) PublishMovieAdded(ctx context.Context, event domain.MovieAddedEvent) error {
	payload := struct {
		MovieID  string         `json:"movie_id"`
		Title    string         `json:"title"`
		Premium  bool           `json:"premium"`
		AddedAt  time.Time      `json:"added_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		MovieID:  event.MovieID,
		Title:    event.Title,
		Premium:  event.Premium,
		AddedAt:  event.AddedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "movie.added", "", event.AddedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
