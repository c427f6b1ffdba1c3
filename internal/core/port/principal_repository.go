package port

import (
	"context"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

// PrincipalRepository exposes persistence behavior for principals.
type PrincipalRepository interface {
	Create(ctx context.Context, principal domain.Principal) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	UpdateDeviceToken(ctx context.Context, id string, deviceToken string) error
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) (bool, error)
	ClearDeviceTokens(ctx context.Context, deviceTokens []string) (int, error)
	ListNotifiableDeviceTokens(ctx context.Context) ([]string, error)
}
