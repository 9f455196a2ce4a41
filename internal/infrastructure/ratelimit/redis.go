package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements a fixed window counter shared by every instance
// pointing at the same Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRedisClient builds a client from config and verifies it with PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a store on an existing client. The client is shared,
// so Close on the store does not close it.
func NewRedisStore(client *redis.Client, keyPrefix string, limit int, window time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

// Allow increments the counter for key. The first hit of a window sets the
// expiry; requests past limit are rejected until the key expires.
func (s *RedisStore) Allow(ctx context.Context, key string) (Result, error) {
	fullKey := s.keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, s.window)
	ttl := pipe.PTTL(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := incr.Val()
	res := Result{
		Allowed:   count <= int64(s.limit),
		Limit:     s.limit,
		Remaining: max(0, s.limit-int(count)),
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = s.window
		}
	}
	return res, nil
}

// Close is a no-op; the owner of the client closes it.
func (s *RedisStore) Close() error {
	return nil
}

var _ Store = (*RedisStore)(nil)
