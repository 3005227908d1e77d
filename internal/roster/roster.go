// Package roster keeps the latest snapshot of players and pending access
// requests delivered by the document store's live queries.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/proneo/platform/internal/domain"
)

// Source delivers whole-collection replacements. Each Watch call blocks,
// invoking fn for every new snapshot, until ctx is cancelled (returning nil)
// or the subscription fails (returning the error).
type Source interface {
	WatchPlayers(ctx context.Context, fn func([]domain.Player)) error
	WatchPending(ctx context.Context, fn func([]domain.PendingUserRequest)) error
}

// StaticSource serves a fixed snapshot once. Used by the CLI and in tests.
type StaticSource struct {
	Players []domain.Player             `json:"players"`
	Pending []domain.PendingUserRequest `json:"pending"`
}

// LoadStaticSource reads a JSON document {"players": [...], "pending": [...]}.
func LoadStaticSource(path string) (*StaticSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var src StaticSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &src, nil
}

func (s *StaticSource) WatchPlayers(ctx context.Context, fn func([]domain.Player)) error {
	fn(append([]domain.Player(nil), s.Players...))
	<-ctx.Done()
	return nil
}

func (s *StaticSource) WatchPending(ctx context.Context, fn func([]domain.PendingUserRequest)) error {
	fn(append([]domain.PendingUserRequest(nil), s.Pending...))
	<-ctx.Done()
	return nil
}
