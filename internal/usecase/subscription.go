package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

var (
	// ErrInvalidPlan indicates an unknown or unpurchasable plan code.
	ErrInvalidPlan = errors.New("invalid plan code")
	// ErrInvalidPlatform indicates an unknown checkout platform.
	ErrInvalidPlatform = errors.New("invalid platform")
	// ErrProviderUnavailable indicates the payment provider call failed.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrSubscriptionNotFound indicates no subscription matched the lookup.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// CheckoutIntent is the provider-issued descriptor of a pending purchase,
// returned to the caller so it can redirect into the hosted checkout page.
// Nothing about the subscription changes until reconciliation.
type CheckoutIntent struct {
	SessionID   string
	CheckoutURL string
}

// SubscriptionLedger owns subscription state per principal. It reconciles
// local state against the payment provider's checkout sessions and applies
// lazy expiry downgrades on read.
type SubscriptionLedger struct {
	billing       config.BillingSettings
	subscriptions port.SubscriptionRepository
	principals    port.PrincipalRepository
	provider      port.PaymentProvider
	events        port.EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

// NewSubscriptionLedger constructs a SubscriptionLedger instance.
func NewSubscriptionLedger(
	billing config.BillingSettings,
	subscriptions port.SubscriptionRepository,
	principals port.PrincipalRepository,
	provider port.PaymentProvider,
	events port.EventPublisher,
	log *zap.Logger,
) (*SubscriptionLedger, error) {
	if subscriptions == nil {
		return nil, fmt.Errorf("subscription repository is required")
	}
	if principals == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SubscriptionLedger{
		billing:       billing,
		subscriptions: subscriptions,
		principals:    principals,
		provider:      provider,
		events:        events,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the ledger clock for deterministic tests.
func (l *SubscriptionLedger) WithClock(clock func() time.Time) {
	if clock != nil {
		l.now = clock
	}
}

// Initialize creates the principal's subscription in the basic tier.
// Customer registration with the payment provider is best effort; when the
// provider is unreachable the subscription is created without an external
// customer id and the id is backfilled at checkout time.
func (l *SubscriptionLedger) Initialize(ctx context.Context, principal domain.Principal) (*domain.Subscription, error) {
	now := l.now()
	subscription := domain.Subscription{
		ID:          uuid.NewString(),
		PrincipalID: principal.ID,
		PlanType:    domain.PlanBasic,
		Status:      domain.SubscriptionActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	customerID, err := l.provider.CreateCustomer(ctx, principal.Email)
	if err != nil {
		l.logger.Warn("customer provisioning failed, continuing without external id",
			zap.String("principal_id", principal.ID),
			zap.String("email", logger.MaskEmail(principal.Email)),
			zap.Error(err),
		)
	} else {
		subscription.ExternalCustomerID = &customerID
	}

	if err := l.subscriptions.Create(ctx, subscription); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return &subscription, nil
}

// BeginCheckout opens a hosted checkout session for a premium purchase.
// The subscription itself is untouched; the purchase is final only after
// Reconcile sees the provider's completed session.
func (l *SubscriptionLedger) BeginCheckout(ctx context.Context, principalID string, planCode domain.PlanCode, platform domain.Platform) (*CheckoutIntent, error) {
	if !planCode.Valid() {
		return nil, ErrInvalidPlan
	}
	if !platform.Valid() {
		return nil, ErrInvalidPlatform
	}

	priceID, ok := l.billing.PriceForPlan(string(planCode))
	if !ok {
		return nil, fmt.Errorf("%w: no price configured for %q", ErrInvalidPlan, planCode)
	}

	successURL, cancelURL, ok := l.billing.RedirectsForPlatform(string(platform))
	if !ok {
		return nil, fmt.Errorf("%w: no redirects configured for %q", ErrInvalidPlatform, platform)
	}

	subscription, err := l.subscriptions.GetByPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	customerID, err := l.ensureCustomer(ctx, subscription)
	if err != nil {
		return nil, err
	}

	session, err := l.provider.CreateCheckoutSession(ctx, port.CheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata: map[string]string{
			"principal_id": principalID,
			"plan_code":    string(planCode),
			"platform":     string(platform),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrProviderUnavailable, err)
	}

	return &CheckoutIntent{
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// ensureCustomer backfills the external customer id when the best-effort
// registration at principal creation did not produce one. Unlike that
// path, a provider failure here aborts the checkout.
func (l *SubscriptionLedger) ensureCustomer(ctx context.Context, subscription *domain.Subscription) (string, error) {
	if subscription.ExternalCustomerID != nil && *subscription.ExternalCustomerID != "" {
		return *subscription.ExternalCustomerID, nil
	}

	principal, err := l.principals.GetByID(ctx, subscription.PrincipalID)
	if err != nil {
		return "", fmt.Errorf("lookup principal: %w", err)
	}

	customerID, err := l.provider.CreateCustomer(ctx, principal.Email)
	if err != nil {
		return "", fmt.Errorf("%w: create customer: %v", ErrProviderUnavailable, err)
	}

	subscription.ExternalCustomerID = &customerID
	subscription.UpdatedAt = l.now()
	if err := l.subscriptions.Update(ctx, *subscription); err != nil {
		return "", fmt.Errorf("persist customer id: %w", err)
	}

	return customerID, nil
}

// Reconcile applies a completed checkout session to the matching
// subscription. Reconciliation is keyed by the provider's subscription id:
// replaying a session that already produced the stored subscription id is
// a no-op, so duplicate success callbacks cannot extend the expiry.
func (l *SubscriptionLedger) Reconcile(ctx context.Context, sessionID string) (*domain.Subscription, error) {
	session, err := l.provider.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve checkout session: %v", ErrProviderUnavailable, err)
	}

	subscription, err := l.subscriptions.GetByExternalCustomer(ctx, session.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	planCode := domain.PlanCode(session.Metadata["plan_code"])
	if !planCode.Valid() {
		return nil, fmt.Errorf("%w: session %s carries plan %q", ErrInvalidPlan, sessionID, session.Metadata["plan_code"])
	}

	if session.SubscriptionID != "" &&
		subscription.ExternalSubscriptionID != nil &&
		*subscription.ExternalSubscriptionID == session.SubscriptionID &&
		subscription.IsPremiumActive() {
		l.logger.Info("reconciliation replayed, subscription already current",
			zap.String("principal_id", subscription.PrincipalID),
			zap.String("external_subscription_id", session.SubscriptionID),
		)
		return subscription, nil
	}

	now := l.now()
	expiresAt := planCode.ExpiryFrom(now)

	subscription.PlanType = domain.PlanPremium
	subscription.Status = domain.SubscriptionActive
	subscription.ExpiresAt = &expiresAt
	subscription.UpdatedAt = now
	if session.SubscriptionID != "" {
		externalID := session.SubscriptionID
		subscription.ExternalSubscriptionID = &externalID
	}

	if err := l.subscriptions.Update(ctx, *subscription); err != nil {
		return nil, fmt.Errorf("persist reconciliation: %w", err)
	}

	if l.events != nil {
		event := domain.SubscriptionReconciledEvent{
			PrincipalID:            subscription.PrincipalID,
			PlanCode:               string(planCode),
			ExternalSubscriptionID: session.SubscriptionID,
			ExpiresAt:              expiresAt,
			ReconciledAt:           now,
		}
		if err := l.events.PublishSubscriptionReconciled(ctx, event); err != nil {
			l.logger.Warn("publish subscription reconciled event failed", zap.Error(err))
		}
	}

	return subscription, nil
}

// Status returns the principal's subscription, downgrading a lapsed
// premium tier first. The downgrade is evaluated on every read, so no
// caller ever sees a lapsed subscription reported as premium. Concurrent
// readers may race on the downgrade; it is idempotent, so the second
// writer's update is a no-op in effect.
func (l *SubscriptionLedger) Status(ctx context.Context, principalID string) (*domain.Subscription, error) {
	subscription, err := l.subscriptions.GetByPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	if subscription.Lapsed(l.now()) {
		if subscription.Downgrade() {
			subscription.UpdatedAt = l.now()
			if err := l.subscriptions.Update(ctx, *subscription); err != nil {
				return nil, fmt.Errorf("persist downgrade: %w", err)
			}
			l.logger.Info("premium subscription lapsed, downgraded to basic",
				zap.String("principal_id", principalID),
			)
		}
	}

	return subscription, nil
}
