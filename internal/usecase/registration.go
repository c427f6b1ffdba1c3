package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
	"github.com/EliteTRENT/movie-explorer/internal/infra/security"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

var (
	// ErrEmailTaken indicates another principal already registered the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword indicates the password failed policy validation.
	ErrWeakPassword = errors.New("password does not meet policy")
)

// RegisterInput captures a signup request.
type RegisterInput struct {
	Name         string
	Email        string
	MobileNumber *string
	Password     string
}

// RegistrationService creates principals together with their subscription.
type RegistrationService struct {
	principals port.PrincipalRepository
	ledger     *SubscriptionLedger
	passwords  *security.PasswordValidator
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	principals port.PrincipalRepository,
	ledger *SubscriptionLedger,
	passwords *security.PasswordValidator,
	events port.EventPublisher,
	log *zap.Logger,
) (*RegistrationService, error) {
	if principals == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("subscription ledger is required")
	}
	if passwords == nil {
		passwords = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &RegistrationService{
		principals: principals,
		ledger:     ledger,
		passwords:  passwords,
		events:     events,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates a standard-role principal and its basic subscription.
// Every principal gets exactly one subscription, created here.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.Principal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}

	if err := s.passwords.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	principal := domain.Principal{
		ID:                   uuid.NewString(),
		Name:                 name,
		Email:                email,
		MobileNumber:         input.MobileNumber,
		PasswordHash:         hash,
		Role:                 domain.RoleStandard,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create principal: %w", err)
	}

	if _, err := s.ledger.Initialize(ctx, principal); err != nil {
		return nil, fmt.Errorf("initialize subscription: %w", err)
	}

	s.logger.Info("principal registered",
		zap.String("principal_id", principal.ID),
		zap.String("email", logger.MaskEmail(principal.Email)),
	)

	if s.events != nil {
		event := domain.PrincipalRegisteredEvent{
			PrincipalID:  principal.ID,
			Email:        principal.Email,
			Role:         string(principal.Role),
			RegisteredAt: now,
		}
		if err := s.events.PublishPrincipalRegistered(ctx, event); err != nil {
			s.logger.Warn("publish principal registered event failed", zap.Error(err))
		}
	}

	return &principal, nil
}

// RegisterDevice stores the device token used for push notifications.
func (s *RegistrationService) RegisterDevice(ctx context.Context, principalID, deviceToken string) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return fmt.Errorf("device token is required")
	}

	if err := s.principals.UpdateDeviceToken(ctx, principalID, deviceToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("update device token: %w", err)
	}
	return nil
}

// SetNotificationsEnabled toggles push delivery for the principal and
// returns the stored value.
func (s *RegistrationService) SetNotificationsEnabled(ctx context.Context, principalID string, enabled bool) (bool, error) {
	stored, err := s.principals.SetNotificationsEnabled(ctx, principalID, enabled)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrPrincipalNotFound
		}
		return false, fmt.Errorf("set notifications enabled: %w", err)
	}
	return stored, nil
}
