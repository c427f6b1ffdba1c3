package port

import (
	"context"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishPrincipalRegistered(ctx context.Context, event domain.PrincipalRegisteredEvent) error
	PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error
	PublishSubscriptionReconciled(ctx context.Context, event domain.SubscriptionReconciledEvent) error
	PublishMovieAdded(ctx context.Context, event domain.MovieAddedEvent) error
}
