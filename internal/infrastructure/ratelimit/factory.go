package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates stores of the configured kind and owns the Redis client
// they share.
type Factory struct {
	kind                  string
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	mu     sync.Mutex
	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a Redis outage degrades to
// per-process limiting. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a factory for the given store kind.
func NewFactory(kind string, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		kind:                  kind,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a store allowing limit hits per window. name separates the
// counters of different limiters sharing one Redis.
func (f *Factory) Create(ctx context.Context, name string, limit int, window time.Duration) (Store, error) {
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("rate limit %q: limit and window must be positive", name)
	}

	switch f.kind {
	case "", KindMemory:
		return NewMemoryStore(limit, window), nil
	case KindRedis:
		client, err := f.redisClient(ctx)
		if err == nil {
			f.logger.Info("using Redis rate limit store", zap.String("limiter", name))
			return NewRedisStore(client, "ratelimit:"+name+":", limit, window), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for rate limiting but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory rate limit store. "+
			"Limits will not be shared across instances.",
			zap.String("limiter", name),
			zap.Error(err),
		)
		return NewMemoryStore(limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", f.kind)
	}
}

// RedisClient returns the shared Redis client, dialing it on first use.
// Other components that need Redis reuse it instead of opening their own pool.
func (f *Factory) RedisClient(ctx context.Context) (*redis.Client, error) {
	return f.redisClient(ctx)
}

// Kind returns the configured store kind
func (f *Factory) Kind() string {
	return f.kind
}

func (f *Factory) redisClient(ctx context.Context) (*redis.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		return f.client, nil
	}
	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		return nil, err
	}
	f.client = client
	return client, nil
}

// Close releases the shared Redis client if one was opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}
