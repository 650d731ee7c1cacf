// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the counter surface the limiter runs on. Production uses Redis;
// tests swap in an in-memory store.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
}

func (s redisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s redisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s redisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Limiter implements fixed window counters. Counters are created with the
// window as their expiry and never decremented; they simply age out. The INCR
// and EXPIRE are two round trips, so two concurrent first requests can race
// and both pass. Approximate limiting is acceptable here.
type Limiter struct {
	store Store
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{store: redisStore{client: client}}
}

func NewLimiterWithStore(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow increments the counter for key and reports whether the caller is
// still under limit within the window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiration on first hit
	if count == 1 {
		if err := l.store.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= limit, nil
}

// AllowChatMessage checks the per-user chat message limit.
func (l *Limiter) AllowChatMessage(ctx context.Context, userID int64, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:chat:%d", userID)
	return l.Allow(ctx, key, limit, window)
}

// AllowLoginAttempt checks if a login attempt is allowed. Up to 5 attempts
// per 15 minutes per IP and email pair.
func (l *Limiter) AllowLoginAttempt(ctx context.Context, ip, email string) (bool, error) {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return l.Allow(ctx, key, 5, 15*time.Minute)
}

// ResetLoginAttempts clears the login counter after a successful login.
func (l *Limiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return l.store.Del(ctx, key)
}
