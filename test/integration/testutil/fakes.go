//go:build integration

package testutil

import (
	"context"
	"sync"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/settings"
)

// Snapshot is a settable roster snapshot.
type Snapshot struct {
	mu   sync.RWMutex
	snap roster.Snapshot
}

func (s *Snapshot) Set(snap roster.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func (s *Snapshot) Current() roster.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Directory records the user document writes the service dispatches. Emails
// in Approved are live accounts; any other email is a pending request.
type Directory struct {
	mu       sync.Mutex
	calls    []string
	Approved map[string]domain.Role
}

func (d *Directory) Get(_ context.Context, email string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if role, ok := d.Approved[email]; ok {
		return &domain.User{Email: email, Role: role, Approved: true}, nil
	}
	return &domain.User{Email: email}, nil
}

func (d *Directory) record(op, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, op+":"+email)
}

// Calls returns the recorded "op:email" writes.
func (d *Directory) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *Directory) Approve(_ context.Context, email string) error {
	d.record("approve", email)
	return nil
}

func (d *Directory) Reject(_ context.Context, email string) error {
	d.record("reject", email)
	return nil
}

func (d *Directory) List(context.Context) ([]domain.User, error) { return nil, nil }

func (d *Directory) Update(_ context.Context, email string, _ domain.Role, _ domain.Category) error {
	d.record("update", email)
	return nil
}

func (d *Directory) Delete(_ context.Context, email string) error {
	d.record("delete", email)
	return nil
}

// Lists is an in-memory picklist document.
type Lists struct {
	mu sync.Mutex
	l  settings.SystemLists
}

func (m *Lists) Load(context.Context) (settings.SystemLists, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.l.NeedsSeed() {
		m.l = settings.DefaultSystemLists()
	}
	return m.l, nil
}

func (m *Lists) Save(_ context.Context, l settings.SystemLists) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.l = l
	return nil
}
