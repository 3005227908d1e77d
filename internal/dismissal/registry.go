package dismissal

import (
	"context"
	"sync"

	"github.com/proneo/platform/internal/localstate"
)

// Registry hands out one loaded Store per device over a shared backend.
type Registry struct {
	mu      sync.Mutex
	backend localstate.Store
	stores  map[string]*Store
}

// NewRegistry creates a registry over backend.
func NewRegistry(backend localstate.Store) *Registry {
	return &Registry{backend: backend, stores: make(map[string]*Store)}
}

// For returns the store for deviceID, loading it on first use. A store whose
// load failed is returned empty together with the error and retried next call.
func (r *Registry) For(ctx context.Context, deviceID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[deviceID]; ok {
		return s, nil
	}
	s := New(localstate.Scoped(r.backend, deviceID))
	if err := s.Load(ctx); err != nil {
		return s, err
	}
	r.stores[deviceID] = s
	return s, nil
}
