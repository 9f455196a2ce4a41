//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/ratelimit/ratelimittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRevocationList(t *testing.T) {
	client := ratelimittest.NewRedis(t)
	list := auth.NewRedisRevocationList(client)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, "token:revoked:jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisRevocationList_EntriesExpire(t *testing.T) {
	client := ratelimittest.NewRedis(t)
	list := auth.NewRedisRevocationList(client)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "short", 200*time.Millisecond))

	require.Eventually(t, func() bool {
		revoked, err := list.IsRevoked(ctx, "short")
		return err == nil && !revoked
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRedisRevocationList_NonPositiveTTLIsNoop(t *testing.T) {
	client := ratelimittest.NewRedis(t)
	list := auth.NewRedisRevocationList(client)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "old", 0))

	revoked, err := list.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}
