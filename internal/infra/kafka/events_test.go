package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "catalog",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "movie-explorer",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishSubscriptionReconciled(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	reconciledAt := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	event := domain.SubscriptionReconciledEvent{
		EventID:                "event-123",
		PrincipalID:            "user-456",
		PlanCode:               "medium",
		ExternalSubscriptionID: "sub_789",
		ExpiresAt:              reconciledAt.AddDate(0, 1, 0),
		ReconciledAt:           reconciledAt,
		Metadata:               map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishSubscriptionReconciled(context.Background(), event); err != nil {
		t.Fatalf("PublishSubscriptionReconciled returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "catalog.subscription.reconciled" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "subscription.reconciled" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["principal_id"]; got != event.PrincipalID {
			t.Fatalf("unexpected principal_id: %v", got)
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}

		if timestamp != reconciledAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["plan_code"]; got != event.PlanCode {
			t.Fatalf("unexpected plan_code: %v", got)
		}

		if got := payload["external_subscription_id"]; got != event.ExternalSubscriptionID {
			t.Fatalf("unexpected external_subscription_id: %v", got)
		}

		expiresAt, ok := payload["expires_at"].(string)
		if !ok {
			t.Fatalf("expires_at not a string: %T", payload["expires_at"])
		}

		if expiresAt != event.ExpiresAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected expires_at: %s", expiresAt)
		}

		metadata, ok := payload["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata not a map: %T", payload["metadata"])
		}

		if metadata["source"] != "unit-test" {
			t.Fatalf("metadata did not round-trip: %v", metadata)
		}

		envelopeMetadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}

		if envelopeMetadata["service"] != "movie-explorer" {
			t.Fatalf("unexpected metadata service: %v", envelopeMetadata["service"])
		}

		if envelopeMetadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", envelopeMetadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishMovieAdded(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	addedAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	event := domain.MovieAddedEvent{
		EventID:  "evt-001",
		MovieID:  "movie-123",
		Title:    "Inception",
		Premium:  true,
		AddedAt:  addedAt,
		Metadata: map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishMovieAdded(context.Background(), event); err != nil {
		t.Fatalf("PublishMovieAdded returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "catalog.movie.added" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "movie.added" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if _, present := envelope["principal_id"]; present {
			t.Fatalf("principal_id should be omitted for catalog events: %v", envelope["principal_id"])
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["movie_id"]; got != event.MovieID {
			t.Fatalf("unexpected movie_id: %v", got)
		}

		if got := payload["title"]; got != event.Title {
			t.Fatalf("unexpected title: %v", got)
		}

		premium, ok := payload["premium"].(bool)
		if !ok {
			t.Fatalf("premium not a bool: %T", payload["premium"])
		}

		if !premium {
			t.Fatal("expected premium flag to survive the round trip")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}
