// Package settings holds per-device alert toggles and the shared picklists.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/feed"
	"github.com/proneo/platform/internal/localstate"
)

// AlertSettingsKey is where a device's toggles are stored.
const AlertSettingsKey = "proneo_alert_settings_mobile"

// Defaults enables every alert kind.
func Defaults() feed.Toggles {
	t := make(feed.Toggles, len(domain.AlertKinds()))
	for _, k := range domain.AlertKinds() {
		t[k] = true
	}
	return t
}

// AlertSettings is one device's kind -> enabled map. Mandatory kinds are
// always on: Set refuses to disable them and Load re-pins them.
type AlertSettings struct {
	mu      sync.RWMutex
	backend localstate.Store
	toggles feed.Toggles
}

// NewAlertSettings returns default settings over backend. Call Load before use.
func NewAlertSettings(backend localstate.Store) *AlertSettings {
	return &AlertSettings{backend: backend, toggles: Defaults()}
}

// Load reads the stored toggles. Missing, corrupt or unknown entries fall
// back to defaults; only backend failures are returned.
func (s *AlertSettings) Load(ctx context.Context) error {
	var stored map[domain.AlertKind]bool
	err := localstate.GetJSON(ctx, s.backend, AlertSettingsKey, &stored)

	toggles := Defaults()
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		for k, enabled := range stored {
			if k.Valid() && !k.Mandatory() {
				toggles[k] = enabled
			}
		}
	case errors.Is(err, localstate.ErrKeyNotFound), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		err = nil
	default:
		err = fmt.Errorf("load alert settings: %w", err)
	}

	s.mu.Lock()
	s.toggles = toggles
	s.mu.Unlock()
	return err
}

// Set changes one kind and persists the whole map.
func (s *AlertSettings) Set(ctx context.Context, kind domain.AlertKind, enabled bool) error {
	if !kind.Valid() {
		return domain.ErrValidation(fmt.Sprintf("unknown alert kind: %s", kind))
	}
	if kind.Mandatory() && !enabled {
		return domain.ErrMandatoryKind(kind)
	}

	s.mu.Lock()
	s.toggles[kind] = enabled
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if err := localstate.SetJSON(ctx, s.backend, AlertSettingsKey, snapshot, 0); err != nil {
		return fmt.Errorf("save alert settings: %w", err)
	}
	return nil
}

// Toggles returns a copy of the current map, suitable for feed.Build.
func (s *AlertSettings) Toggles() feed.Toggles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *AlertSettings) copyLocked() feed.Toggles {
	out := make(feed.Toggles, len(s.toggles))
	for k, v := range s.toggles {
		out[k] = v
	}
	return out
}

// Registry hands out one loaded AlertSettings per device.
type Registry struct {
	mu       sync.Mutex
	backend  localstate.Store
	settings map[string]*AlertSettings
}

// NewRegistry creates a registry over backend.
func NewRegistry(backend localstate.Store) *Registry {
	return &Registry{backend: backend, settings: make(map[string]*AlertSettings)}
}

// For returns deviceID's settings, loading them on first use.
func (r *Registry) For(ctx context.Context, deviceID string) (*AlertSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.settings[deviceID]; ok {
		return s, nil
	}
	s := NewAlertSettings(localstate.Scoped(r.backend, deviceID))
	if err := s.Load(ctx); err != nil {
		return s, err
	}
	r.settings[deviceID] = s
	return s, nil
}
