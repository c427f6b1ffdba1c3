package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRevocationCache_MarkAndCheck(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewRevocationCache(client, "movie:revoked")

	ctx := context.Background()
	ttl := 2 * time.Minute

	if err := cache.MarkRevoked(ctx, "jti-123", ttl); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	revoked, err := cache.IsRevoked(ctx, "jti-123")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if !revoked {
		t.Fatal("expected jti to be marked revoked")
	}

	remaining := server.TTL("movie:revoked:jti-123")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestRevocationCache_IsRevokedMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewRevocationCache(client, "")

	revoked, err := cache.IsRevoked(context.Background(), "jti-unknown")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatal("expected cache miss for unknown jti")
	}
}

func TestRevocationCache_ExpiresWithToken(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewRevocationCache(client, "movie:revoked")

	ctx := context.Background()
	if err := cache.MarkRevoked(ctx, "jti-short", time.Second); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	server.FastForward(2 * time.Second)

	revoked, err := cache.IsRevoked(ctx, "jti-short")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to expire alongside the token")
	}
}

func TestRevocationCache_RejectsEmptyJTI(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewRevocationCache(client, "movie:revoked")

	if err := cache.MarkRevoked(context.Background(), "  ", time.Minute); err == nil {
		t.Fatal("expected error for blank jti")
	}
	if _, err := cache.IsRevoked(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty jti")
	}
}
