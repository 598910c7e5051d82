package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker records logged-out tokens until they would have expired
type TokenRevoker interface {
	// Revoke marks the token ID as revoked for ttl
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the token ID was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisTokenRevoker implements TokenRevoker using Redis keys with TTL, so
// a logout is honored by every instance
type RedisTokenRevoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenRevoker creates a revoker on an existing Redis client
func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client, keyPrefix: "dropship:token:revoked:"}
}

// Revoke adds the token ID to the revocation list
func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks the revocation list
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// InMemoryTokenRevoker implements TokenRevoker for a single instance
type InMemoryTokenRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewInMemoryTokenRevoker creates an in-process revoker
func NewInMemoryTokenRevoker() *InMemoryTokenRevoker {
	return &InMemoryTokenRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke adds the token ID and drops entries that have expired
func (r *InMemoryTokenRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, until := range r.revoked {
		if !until.After(now) {
			delete(r.revoked, id)
		}
	}
	r.revoked[jti] = now.Add(ttl)
	return nil
}

// IsRevoked checks the revocation list
func (r *InMemoryTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && until.After(r.now()), nil
}

var (
	_ TokenRevoker = (*RedisTokenRevoker)(nil)
	_ TokenRevoker = (*InMemoryTokenRevoker)(nil)
)
