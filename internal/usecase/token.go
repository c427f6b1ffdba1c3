package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
	"github.com/EliteTRENT/movie-explorer/internal/infra/security"
	"github.com/EliteTRENT/movie-explorer/internal/repository"
)

var (
	// ErrMissingToken indicates no token was supplied with the request.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken indicates the token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token's expiry is in the past.
	ErrExpiredToken = errors.New("token expired")
	// ErrRevokedToken indicates the token was revoked ahead of its natural expiry.
	ErrRevokedToken = errors.New("token revoked")
	// ErrPrincipalNotFound indicates the token references a principal that no longer exists.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrAlreadyRevoked indicates the token was revoked previously.
	ErrAlreadyRevoked = errors.New("token already revoked")
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RevocationMetrics counts revoked sessions.
type RevocationMetrics interface {
	ObserveTokenRevocation()
}

// TokenAuthority issues, validates, and revokes signed session tokens.
// Tokens are stateless and self-verifying; revocation is a deny-list
// keyed by jti, consulted only during validation.
type TokenAuthority struct {
	codec       *security.TokenCodec
	principals  port.PrincipalRepository
	revocations port.RevocationRepository
	cache       port.RevocationCache
	events      port.EventPublisher
	metrics     RevocationMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewTokenAuthority constructs a TokenAuthority instance. The revocation
// cache is optional; when nil every deny-list lookup goes to the durable
// store.
func NewTokenAuthority(
	codec *security.TokenCodec,
	principals port.PrincipalRepository,
	revocations port.RevocationRepository,
	cache port.RevocationCache,
	events port.EventPublisher,
	log *zap.Logger,
) (*TokenAuthority, error) {
	if codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	if principals == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if revocations == nil {
		return nil, fmt.Errorf("revocation repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &TokenAuthority{
		codec:       codec,
		principals:  principals,
		revocations: revocations,
		cache:       cache,
		events:      events,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the authority clock for deterministic tests.
func (a *TokenAuthority) WithClock(clock func() time.Time) {
	if clock != nil {
		a.now = clock
		a.codec.WithClock(clock)
	}
}

// WithMetrics attaches revocation counters.
func (a *TokenAuthority) WithMetrics(metrics RevocationMetrics) {
	a.metrics = metrics
}

// Issue signs a fresh session token for the principal.
func (a *TokenAuthority) Issue(_ context.Context, principal domain.Principal) (string, *security.SessionClaims, error) {
	token, claims, err := a.codec.Issue(principal.ID, string(principal.Role))
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, claims, nil
}

// Authenticate verifies credentials and issues a session token.
func (a *TokenAuthority) Authenticate(ctx context.Context, email, password string) (string, *domain.Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	principal, err := a.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup principal: %w", err)
	}

	ok, err := security.VerifyPassword(password, principal.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := a.Issue(ctx, *principal)
	if err != nil {
		return "", nil, err
	}

	return token, principal, nil
}

// Validate checks a bearer token through five fail-fast gates, in order:
// presence, signature and structure, expiry, revocation, and principal
// existence. Only when all five pass does it return the principal and the
// verified claim set.
func (a *TokenAuthority) Validate(ctx context.Context, token string) (*domain.Principal, *security.SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, ErrMissingToken
	}

	claims, err := a.codec.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, nil, ErrExpiredToken
		}
		return nil, nil, ErrInvalidToken
	}

	if !domain.Role(claims.Role).Valid() {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := a.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrRevokedToken
	}

	principal, err := a.principals.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPrincipalNotFound
		}
		return nil, nil, fmt.Errorf("lookup principal: %w", err)
	}

	return principal, claims, nil
}

// isRevoked consults the cache first and falls back to the durable store.
// Cache failures are logged and never mask a durable-store answer.
func (a *TokenAuthority) isRevoked(ctx context.Context, jti string) (bool, error) {
	if a.cache != nil {
		revoked, err := a.cache.IsRevoked(ctx, jti)
		if err != nil {
			a.logger.Warn("revocation cache lookup failed",
				zap.String("jti", logger.MaskToken(jti)),
				zap.Error(err),
			)
		} else if revoked {
			return true, nil
		}
	}

	return a.revocations.Exists(ctx, jti)
}

// Revoke deny-lists the token's jti until its natural expiry. A second
// revocation of the same jti fails with ErrAlreadyRevoked. Claims
// without an expiry are rejected: the codec always mints one, and a
// record keyed to a synthetic expiry would be pruned while the token
// still parses.
func (a *TokenAuthority) Revoke(ctx context.Context, claims *security.SessionClaims) error {
	if claims == nil || strings.TrimSpace(claims.ID) == "" || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	now := a.now()
	expiresAt := claims.ExpiresAt.Time

	revocation := domain.TokenRevocation{
		JTI:       claims.ID,
		ExpiresAt: expiresAt,
		RevokedAt: now,
	}

	if err := a.revocations.Insert(ctx, revocation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyRevoked
		}
		return fmt.Errorf("insert revocation: %w", err)
	}

	if a.metrics != nil {
		a.metrics.ObserveTokenRevocation()
	}

	if a.cache != nil {
		if ttl := expiresAt.Sub(now); ttl > 0 {
			if err := a.cache.MarkRevoked(ctx, claims.ID, ttl); err != nil {
				a.logger.Warn("revocation cache write failed",
					zap.String("jti", logger.MaskToken(claims.ID)),
					zap.Error(err),
				)
			}
		}
	}

	if a.events != nil {
		event := domain.TokenRevokedEvent{
			JTI:         claims.ID,
			PrincipalID: claims.Subject,
			ExpiresAt:   expiresAt,
			RevokedAt:   now,
		}
		if err := a.events.PublishTokenRevoked(ctx, event); err != nil {
			a.logger.Warn("publish token revoked event failed", zap.Error(err))
		}
	}

	return nil
}

// PruneExpiredRevocations removes deny-list records whose tokens have
// already lapsed. Expired tokens are rejected on expiry grounds, so their
// revocation records are redundant.
func (a *TokenAuthority) PruneExpiredRevocations(ctx context.Context) (int, error) {
	removed, err := a.revocations.DeleteExpired(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("prune revocations: %w", err)
	}
	return removed, nil
}
