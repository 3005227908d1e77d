package roster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/proneo/platform/internal/domain"
)

// Snapshot is the most recent roster seen by a Watcher.
type Snapshot struct {
	Players   []domain.Player
	Pending   []domain.PendingUserRequest
	Version   uint64
	UpdatedAt time.Time
}

// Watcher subscribes to a Source and caches the latest snapshot. Readers call
// Current; the two subscriptions replace their half of the snapshot whole.
type Watcher struct {
	source Source
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot

	wg           sync.WaitGroup
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewWatcher creates a watcher over source.
func NewWatcher(source Source, logger *slog.Logger) *Watcher {
	return &Watcher{
		source:       source,
		logger:       logger,
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
	}
}

// Start runs both subscriptions in goroutines until ctx is cancelled. Failed
// subscriptions are retried with exponential backoff.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("roster watcher started")

	w.wg.Add(2)
	go w.loop(ctx, "players", func(ctx context.Context) error {
		return w.source.WatchPlayers(ctx, w.setPlayers)
	})
	go w.loop(ctx, "pending_users", func(ctx context.Context) error {
		return w.source.WatchPending(ctx, w.setPending)
	})
}

// Wait blocks until both subscriptions have stopped.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Current returns the latest snapshot. The slices must not be modified.
func (w *Watcher) Current() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

func (w *Watcher) setPlayers(players []domain.Player) {
	w.mu.Lock()
	w.snapshot.Players = players
	w.bumpLocked()
	w.mu.Unlock()
	w.logger.Debug("roster players updated", "count", len(players))
}

func (w *Watcher) setPending(pending []domain.PendingUserRequest) {
	w.mu.Lock()
	w.snapshot.Pending = pending
	w.bumpLocked()
	w.mu.Unlock()
	w.logger.Debug("roster pending requests updated", "count", len(pending))
}

func (w *Watcher) bumpLocked() {
	w.snapshot.Version++
	w.snapshot.UpdatedAt = time.Now()
}

func (w *Watcher) loop(ctx context.Context, name string, watch func(context.Context) error) {
	defer w.wg.Done()
	delay := w.initialDelay

	for {
		err := watch(ctx)
		if ctx.Err() != nil {
			w.logger.Info("roster watcher stopped", "subscription", name)
			return
		}
		if err == nil {
			delay = w.initialDelay
		} else {
			w.logger.Error("roster subscription failed", "subscription", name, "error", err, "retry_in", delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("roster watcher stopped", "subscription", name)
			return
		case <-timer.C:
		}

		if err != nil {
			delay *= 2
			if delay > w.maxDelay {
				delay = w.maxDelay
			}
		}
	}
}
