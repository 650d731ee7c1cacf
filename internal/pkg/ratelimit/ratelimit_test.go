package ratelimit

import (
	"context"
	"testing"
	"time"
)

// memStore mimics the counter-with-TTL semantics the limiter relies on,
// driven by a controllable clock.
type memStore struct {
	counts   map[string]int64
	deadline map[string]time.Time
	now      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		counts:   make(map[string]int64),
		deadline: make(map[string]time.Time),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) advance(d time.Duration) { s.now = s.now.Add(d) }

func (s *memStore) Incr(_ context.Context, key string) (int64, error) {
	if dl, ok := s.deadline[key]; ok && !s.now.Before(dl) {
		delete(s.counts, key)
		delete(s.deadline, key)
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.deadline[key] = s.now.Add(ttl)
	return nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	delete(s.counts, key)
	delete(s.deadline, key)
	return nil
}

func TestAllowChatMessageWithinLimit(t *testing.T) {
	store := newMemStore()
	l := NewLimiterWithStore(store)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ok, err := l.AllowChatMessage(ctx, 7, 10, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error on message %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("message %d rejected, limit is 10", i+1)
		}
	}

	ok, err := l.AllowChatMessage(ctx, 7, 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("11th message in the window should be rejected")
	}
}

func TestAllowChatMessageWindowReset(t *testing.T) {
	store := newMemStore()
	l := NewLimiterWithStore(store)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		l.AllowChatMessage(ctx, 7, 10, time.Minute)
	}

	store.advance(61 * time.Second)

	ok, err := l.AllowChatMessage(ctx, 7, 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("counter should reset after the window elapses")
	}
}

func TestAllowChatMessagePerUserKeys(t *testing.T) {
	store := newMemStore()
	l := NewLimiterWithStore(store)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		l.AllowChatMessage(ctx, 1, 10, time.Minute)
	}

	ok, err := l.AllowChatMessage(ctx, 2, 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("one user's counter must not affect another's")
	}
}

func TestAllowLoginAttempt(t *testing.T) {
	store := newMemStore()
	l := NewLimiterWithStore(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.AllowLoginAttempt(ctx, "10.0.0.1", "ana@cobramax.pe")
		if err != nil || !ok {
			t.Fatalf("attempt %d should pass: ok=%v err=%v", i+1, ok, err)
		}
	}

	ok, _ := l.AllowLoginAttempt(ctx, "10.0.0.1", "ana@cobramax.pe")
	if ok {
		t.Fatalf("6th attempt should be rejected")
	}

	// Successful login clears the counter.
	if err := l.ResetLoginAttempts(ctx, "10.0.0.1", "ana@cobramax.pe"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	ok, _ = l.AllowLoginAttempt(ctx, "10.0.0.1", "ana@cobramax.pe")
	if !ok {
		t.Fatalf("attempts should be allowed again after reset")
	}
}
