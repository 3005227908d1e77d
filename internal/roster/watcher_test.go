package roster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/proneo/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type flakySource struct {
	attempts atomic.Int32
	players  []domain.Player
}

func (f *flakySource) WatchPlayers(ctx context.Context, fn func([]domain.Player)) error {
	if f.attempts.Add(1) == 1 {
		return errors.New("unavailable")
	}
	fn(f.players)
	<-ctx.Done()
	return nil
}

func (f *flakySource) WatchPending(ctx context.Context, fn func([]domain.PendingUserRequest)) error {
	fn([]domain.PendingUserRequest{{ID: "a@p.com", Email: "a@p.com"}})
	<-ctx.Done()
	return nil
}

func TestWatcher_CachesLatestSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &StaticSource{
		Players: []domain.Player{{ID: "p1"}, {ID: "p2"}},
		Pending: []domain.PendingUserRequest{{ID: "x@p.com"}},
	}
	w := NewWatcher(src, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	w.Start(ctx)
	require.Eventually(t, func() bool { return w.Current().Version == 2 }, time.Second, 5*time.Millisecond)

	snap := w.Current()
	assert.Len(t, snap.Players, 2)
	assert.Len(t, snap.Pending, 1)
	assert.False(t, snap.UpdatedAt.IsZero())

	cancel()
	w.Wait()
}

func TestWatcher_RetriesFailedSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &flakySource{players: []domain.Player{{ID: "p1"}}}
	w := NewWatcher(src, testLogger())
	w.initialDelay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	w.Start(ctx)
	require.Eventually(t, func() bool { return len(w.Current().Players) == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, src.attempts.Load(), int32(2))

	cancel()
	w.Wait()
}

func TestLoadStaticSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"players": [{"id": "p1", "name": "Dani", "birthDate": "1990-03-15", "proneo": {"agencyEndDate": "30/06/2024"}}],
		"pending": [{"id": "n@p.com", "name": "Nora", "email": "n@p.com"}]
	}`), 0o600))

	src, err := LoadStaticSource(path)
	require.NoError(t, err)
	require.Len(t, src.Players, 1)
	assert.Equal(t, "30/06/2024", src.Players[0].AgencyEndDate())
	assert.Equal(t, "Nora", src.Pending[0].Name)

	_, err = LoadStaticSource(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
