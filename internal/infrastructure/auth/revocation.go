package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates individual tokens before they expire, keyed by
// the token's JWT ID. Entries only need to live until the token would have
// expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList shares revocations across instances
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list on an existing client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{
		client:    client,
		keyPrefix: "token:revoked:",
	}
}

// Revoke marks jti as revoked for ttl
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked and the entry is still live
func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// MemoryRevocationList keeps revocations in process.
// Revocations are not shared between instances.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> entry expiry
	now     func() time.Time
}

// NewMemoryRevocationList creates an empty in-process revocation list
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks jti as revoked for ttl. Expired entries are pruned on write.
func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, expiry := range m.revoked {
		if now.After(expiry) {
			delete(m.revoked, key)
		}
	}
	m.revoked[jti] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether jti was revoked and the entry is still live
func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked entries, expired ones included
func (m *MemoryRevocationList) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revoked)
}

var _ RevocationList = (*MemoryRevocationList)(nil)
