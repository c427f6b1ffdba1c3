package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

type stubPrincipalRepo struct {
	byID    map[string]*domain.Principal
	byEmail map[string]*domain.Principal

	listTokensFn  func(ctx context.Context) ([]string, error)
	clearTokensFn func(ctx context.Context, tokens []string) (int, error)
	cleared       [][]string
}

func (s *stubPrincipalRepo) Create(_ context.Context, principal domain.Principal) error {
	if s.byID == nil {
		s.byID = make(map[string]*domain.Principal)
	}
	if s.byEmail == nil {
		s.byEmail = make(map[string]*domain.Principal)
	}
	if _, ok := s.byEmail[principal.Email]; ok {
		return repository.ErrDuplicate
	}
	copied := principal
	s.byID[principal.ID] = &copied
	s.byEmail[principal.Email] = &copied
	return nil
}

func (s *stubPrincipalRepo) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	if principal, ok := s.byID[id]; ok {
		copied := *principal
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubPrincipalRepo) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	if principal, ok := s.byEmail[email]; ok {
		copied := *principal
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubPrincipalRepo) UpdateDeviceToken(_ context.Context, id string, deviceToken string) error {
	principal, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	principal.DeviceToken = &deviceToken
	return nil
}

func (s *stubPrincipalRepo) SetNotificationsEnabled(_ context.Context, id string, enabled bool) (bool, error) {
	principal, ok := s.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	principal.NotificationsEnabled = enabled
	return enabled, nil
}

func (s *stubPrincipalRepo) ClearDeviceTokens(ctx context.Context, deviceTokens []string) (int, error) {
	s.cleared = append(s.cleared, deviceTokens)
	if s.clearTokensFn != nil {
		return s.clearTokensFn(ctx, deviceTokens)
	}
	return len(deviceTokens), nil
}

func (s *stubPrincipalRepo) ListNotifiableDeviceTokens(ctx context.Context) ([]string, error) {
	if s.listTokensFn != nil {
		return s.listTokensFn(ctx)
	}
	var tokens []string
	for _, principal := range s.byID {
		if principal.Notifiable() {
			tokens = append(tokens, *principal.DeviceToken)
		}
	}
	return tokens, nil
}

type stubSubscriptionRepo struct {
	byPrincipal map[string]*domain.Subscription
	byCustomer  map[string]*domain.Subscription
	updates     int
}

func (s *stubSubscriptionRepo) Create(_ context.Context, subscription domain.Subscription) error {
	if s.byPrincipal == nil {
		s.byPrincipal = make(map[string]*domain.Subscription)
	}
	if s.byCustomer == nil {
		s.byCustomer = make(map[string]*domain.Subscription)
	}
	if _, ok := s.byPrincipal[subscription.PrincipalID]; ok {
		return repository.ErrDuplicate
	}
	copied := subscription
	s.byPrincipal[subscription.PrincipalID] = &copied
	if subscription.ExternalCustomerID != nil {
		s.byCustomer[*subscription.ExternalCustomerID] = &copied
	}
	return nil
}

func (s *stubSubscriptionRepo) GetByPrincipal(_ context.Context, principalID string) (*domain.Subscription, error) {
	if subscription, ok := s.byPrincipal[principalID]; ok {
		copied := *subscription
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubSubscriptionRepo) GetByExternalCustomer(_ context.Context, externalCustomerID string) (*domain.Subscription, error) {
	if subscription, ok := s.byCustomer[externalCustomerID]; ok {
		copied := *subscription
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubSubscriptionRepo) Update(_ context.Context, subscription domain.Subscription) error {
	stored, ok := s.byPrincipal[subscription.PrincipalID]
	if !ok {
		return repository.ErrNotFound
	}
	s.updates++
	*stored = subscription
	if subscription.ExternalCustomerID != nil {
		s.byCustomer[*subscription.ExternalCustomerID] = stored
	}
	return nil
}

type stubRevocationRepo struct {
	mu      sync.Mutex
	revoked map[string]domain.TokenRevocation
}

func (s *stubRevocationRepo) Insert(_ context.Context, revocation domain.TokenRevocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked == nil {
		s.revoked = make(map[string]domain.TokenRevocation)
	}
	if _, ok := s.revoked[revocation.JTI]; ok {
		return repository.ErrDuplicate
	}
	s.revoked[revocation.JTI] = revocation
	return nil
}

func (s *stubRevocationRepo) Exists(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

func (s *stubRevocationRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for jti, revocation := range s.revoked {
		if revocation.ExpiresAt.Before(before) {
			delete(s.revoked, jti)
			removed++
		}
	}
	return removed, nil
}

type stubPaymentProvider struct {
	createCustomerFn  func(ctx context.Context, email string) (string, error)
	createSessionFn   func(ctx context.Context, req port.CheckoutSessionRequest) (*port.CheckoutSession, error)
	retrieveSessionFn func(ctx context.Context, sessionID string) (*port.CheckoutSession, error)
}

func (s *stubPaymentProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	if s.createCustomerFn != nil {
		return s.createCustomerFn(ctx, email)
	}
	return "cus_stub", nil
}

func (s *stubPaymentProvider) CreateCheckoutSession(ctx context.Context, req port.CheckoutSessionRequest) (*port.CheckoutSession, error) {
	if s.createSessionFn != nil {
		return s.createSessionFn(ctx, req)
	}
	panic("unexpected call to CreateCheckoutSession")
}

func (s *stubPaymentProvider) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*port.CheckoutSession, error) {
	if s.retrieveSessionFn != nil {
		return s.retrieveSessionFn(ctx, sessionID)
	}
	panic("unexpected call to RetrieveCheckoutSession")
}

type stubPushProvider struct {
	credentialFn func(ctx context.Context) (string, error)
	sendFn       func(ctx context.Context, credential, deviceToken, title, body string, data map[string]string) (*port.PushResponse, error)

	mu   sync.Mutex
	sent []string
}

func (s *stubPushProvider) Credential(ctx context.Context) (string, error) {
	if s.credentialFn != nil {
		return s.credentialFn(ctx)
	}
	return "credential-stub", nil
}

func (s *stubPushProvider) Send(ctx context.Context, credential, deviceToken, title, body string, data map[string]string) (*port.PushResponse, error) {
	s.mu.Lock()
	s.sent = append(s.sent, deviceToken)
	s.mu.Unlock()
	if s.sendFn != nil {
		return s.sendFn(ctx, credential, deviceToken, title, body, data)
	}
	return &port.PushResponse{StatusCode: 200, Body: `{"success":1,"failure":0}`}, nil
}

func (s *stubPushProvider) sentTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type stubEventPublisher struct {
	mu     sync.Mutex
	events []string
}

func (s *stubEventPublisher) record(eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
}

func (s *stubEventPublisher) PublishPrincipalRegistered(context.Context, domain.PrincipalRegisteredEvent) error {
	s.record("user.registered")
	return nil
}

func (s *stubEventPublisher) PublishTokenRevoked(context.Context, domain.TokenRevokedEvent) error {
	s.record("token.revoked")
	return nil
}

func (s *stubEventPublisher) PublishSubscriptionReconciled(context.Context, domain.SubscriptionReconciledEvent) error {
	s.record("subscription.reconciled")
	return nil
}

func (s *stubEventPublisher) PublishMovieAdded(context.Context, domain.MovieAddedEvent) error {
	s.record("movie.added")
	return nil
}
