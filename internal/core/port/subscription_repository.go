package port

import (
	"context"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

// SubscriptionRepository exposes persistence behavior for subscriptions.
// Exactly one subscription exists per principal.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription domain.Subscription) error
	GetByPrincipal(ctx context.Context, principalID string) (*domain.Subscription, error)
	GetByExternalCustomer(ctx context.Context, externalCustomerID string) (*domain.Subscription, error)
	Update(ctx context.Context, subscription domain.Subscription) error
}
