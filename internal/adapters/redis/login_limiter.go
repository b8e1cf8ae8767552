// Package redis provides Redis-based adapters for the back office.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLimiterPrefix = "login:fail:"

// ErrUnavailable wraps Redis failures so callers can decide to fail open or closed.
var ErrUnavailable = errors.New("login limiter unavailable")

// LimiterConfig bounds failed password attempts per key inside a fixed window.
type LimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// LoginLimiter is a fixed-window failure counter. INCR and EXPIRE NX run in one
// MULTI so the first failure always starts the window.
type LoginLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
	prefix      string
}

// NewLoginLimiter creates a limiter. Zero values fall back to 5 attempts per 15 minutes.
func NewLoginLimiter(client redis.UniversalClient, cfg LimiterConfig) *LoginLimiter {
	l := &LoginLimiter{
		client:      client,
		maxAttempts: int64(cfg.MaxAttempts),
		window:      cfg.Window,
		prefix:      cfg.Prefix,
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.prefix == "" {
		l.prefix = defaultLimiterPrefix
	}
	return l
}

// Check reports whether key is still under the failure budget.
func (l *LoginLimiter) Check(ctx context.Context, key string) (bool, time.Duration, error) {
	if key == "" {
		return true, 0, nil
	}
	k := l.prefix + key
	count, err := l.client.Get(ctx, k).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, 0, nil
		}
		return false, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if count < l.maxAttempts {
		return true, 0, nil
	}
	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	switch {
	case ttl == -2:
		// Expired between GET and TTL.
		return true, 0, nil
	case ttl < 0:
		// A counter without expiry would lock the account for good.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		ttl = l.window
	}
	return false, ttl, nil
}

// RecordFailure increments the counter, starting the window on the first failure.
// Later failures never extend it.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	k := l.prefix + key
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Reset drops the counter for key.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
