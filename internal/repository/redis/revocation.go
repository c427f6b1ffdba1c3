package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
)

const defaultRevocationPrefix = "movie:revoked"

// RevocationCache layers fast deny-list lookups over Redis. Entries carry a
// TTL matching the shadowed token's remaining lifetime, so the cache prunes
// itself as tokens expire.
type RevocationCache struct {
	client *red.Client
	prefix string
}

// NewRevocationCache wires a Redis client into a revocation cache.
func NewRevocationCache(client *red.Client, keyPrefix string) *RevocationCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}

	return &RevocationCache{client: client, prefix: prefix}
}

// MarkRevoked stores the supplied JTI with a TTL matching the token expiration window.
func (r *RevocationCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	key := r.key(jti)
	if key == "" {
		return errors.New("jti must not be empty")
	}

	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked jti: %w", err)
	}

	return nil
}

// IsRevoked reports whether the JTI is present in the deny cache.
func (r *RevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := r.key(jti)
	if key == "" {
		return false, errors.New("jti must not be empty")
	}

	if err := r.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get revoked jti: %w", err)
	}

	return true, nil
}

func (r *RevocationCache) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.RevocationCache = (*RevocationCache)(nil)
