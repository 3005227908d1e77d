// Package dismissal records which alerts a device has completed or snoozed.
package dismissal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/proneo/platform/internal/localstate"
)

// Storage keys, shared with the mobile web client's local storage layout.
const (
	CompletedKey = "proneo_completed_alerts_mobile"
	SnoozedKey   = "proneo_snoozed_alerts_mobile"
)

// SnoozeDuration is how long a snoozed alert stays hidden.
const SnoozeDuration = 24 * time.Hour

// Store owns the completed set and the snoozed map of one device. Every
// mutation is written through to the backend.
type Store struct {
	mu        sync.RWMutex
	backend   localstate.Store
	completed []string
	done      map[string]bool
	snoozed   map[string]int64 // alert id -> unix millis
}

// State is a read-only copy of the store contents.
type State struct {
	Completed []string             `json:"completed"`
	Snoozed   map[string]time.Time `json:"snoozed"`
}

// New returns an empty store over backend. Call Load before use.
func New(backend localstate.Store) *Store {
	return &Store{
		backend: backend,
		done:    make(map[string]bool),
		snoozed: make(map[string]int64),
	}
}

// Load replaces the in-memory state with what the backend holds. Missing or
// corrupt values load as empty collections; only backend failures are
// returned, and the store is left empty in that case.
func (s *Store) Load(ctx context.Context) error {
	var completed []string
	var snoozed map[string]int64

	okC, errC := readJSON(ctx, s.backend, CompletedKey, &completed)
	if !okC {
		completed = nil
	}
	okS, errS := readJSON(ctx, s.backend, SnoozedKey, &snoozed)
	if !okS {
		snoozed = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed = nil
	s.done = make(map[string]bool, len(completed))
	for _, id := range completed {
		if id == "" || s.done[id] {
			continue
		}
		s.done[id] = true
		s.completed = append(s.completed, id)
	}

	s.snoozed = make(map[string]int64, len(snoozed))
	for id, until := range snoozed {
		if until > 0 {
			s.snoozed[id] = until
		}
	}

	return errors.Join(errC, errS)
}

// Save writes both collections to the backend.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	completed := append([]string{}, s.completed...)
	snoozed := make(map[string]int64, len(s.snoozed))
	for id, until := range s.snoozed {
		snoozed[id] = until
	}
	s.mu.RUnlock()

	if err := localstate.SetJSON(ctx, s.backend, CompletedKey, completed, 0); err != nil {
		return fmt.Errorf("save completed alerts: %w", err)
	}
	if err := localstate.SetJSON(ctx, s.backend, SnoozedKey, snoozed, 0); err != nil {
		return fmt.Errorf("save snoozed alerts: %w", err)
	}
	return nil
}

// Complete hides the alert id permanently. Completing an id twice is a no-op.
func (s *Store) Complete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.done[id] {
		s.mu.Unlock()
		return nil
	}
	s.done[id] = true
	s.completed = append(s.completed, id)
	s.mu.Unlock()

	return s.Save(ctx)
}

// Snooze hides the alert id until now+24h, replacing any earlier snooze.
func (s *Store) Snooze(ctx context.Context, id string, now time.Time) error {
	s.mu.Lock()
	s.snoozed[id] = now.Add(SnoozeDuration).UnixMilli()
	s.mu.Unlock()

	return s.Save(ctx)
}

// IsSuppressed reports whether the alert is completed or still snoozed at now.
func (s *Store) IsSuppressed(id string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.done[id] {
		return true
	}
	until, ok := s.snoozed[id]
	return ok && now.UnixMilli() < until
}

// Reset forgets every dismissal on this device.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.completed = nil
	s.done = make(map[string]bool)
	s.snoozed = make(map[string]int64)
	s.mu.Unlock()

	return s.Save(ctx)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Completed: append([]string{}, s.completed...),
		Snoozed:   make(map[string]time.Time, len(s.snoozed)),
	}
	for id, until := range s.snoozed {
		st.Snoozed[id] = time.UnixMilli(until).UTC()
	}
	return st
}

// SnoozedIDs lists snoozed ids still active at now, sorted.
func (s *Store) SnoozedIDs(now time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, until := range s.snoozed {
		if now.UnixMilli() < until {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// readJSON decodes key into dest and reports whether dest holds a complete
// value. Missing and undecodable values are not errors; partially decoded
// values must be discarded by the caller.
func readJSON(ctx context.Context, backend localstate.Store, key string, dest interface{}) (bool, error) {
	err := localstate.GetJSON(ctx, backend, key, dest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, localstate.ErrKeyNotFound) {
		return false, nil
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false, nil
	}
	return false, fmt.Errorf("load %s: %w", key, err)
}
