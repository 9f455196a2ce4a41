// Package ratelimit provides request rate limiting stores backed by process
// memory or Redis.
package ratelimit

import (
	"context"
	"time"
)

// Store kinds accepted by the factory.
const (
	KindMemory = "memory"
	KindRedis  = "redis"
)

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long the caller should wait before the next request
	// can succeed. Zero when Allowed.
	RetryAfter time.Duration
}

// Store counts hits per key and decides whether a request may proceed.
type Store interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}
