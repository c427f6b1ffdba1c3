package port

import (
	"context"
	"time"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
)

// RevocationRepository persists deny-listed token identifiers.
// Insert enforces uniqueness on the JTI.
type RevocationRepository interface {
	Insert(ctx context.Context, revocation domain.TokenRevocation) error
	Exists(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// RevocationCache layers a fast deny-list lookup in front of the durable
// revocation store. Entries expire with the token they shadow.
type RevocationCache interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
