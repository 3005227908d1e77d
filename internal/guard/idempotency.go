package guard

import (
	"context"
	"sync"
	"time"

	"github.com/proneo/platform/internal/domain"
)

// IdempotencyGuard rejects a key seen again within ttl. Approval and
// rejection of the same request by two directors racing each other is the
// case it exists for.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  Clock
}

// NewIdempotencyGuard creates an in-memory guard with the given window.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock replaces the guard's time source.
func (ig *IdempotencyGuard) WithClock(c Clock) *IdempotencyGuard {
	ig.now = c
	return ig
}

// Check claims key. A second claim inside the window is refused.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	ig.sweep(now)

	if _, ok := ig.seen[key]; ok {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now.Add(ig.ttl)
	return domain.GuardResult{Allowed: true}
}

// Remove releases key so a failed operation can be retried.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}

func (ig *IdempotencyGuard) sweep(now time.Time) {
	for k, until := range ig.seen {
		if !now.Before(until) {
			delete(ig.seen, k)
		}
	}
}
