package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/settings"
)

// ListStore persists the shared picklists document.
type ListStore interface {
	Load(ctx context.Context) (settings.SystemLists, error)
	Save(ctx context.Context, lists settings.SystemLists) error
}

// ListService edits the shared picklists. Edits are serialized in process;
// the document is read fresh for every edit.
type ListService struct {
	mu     sync.Mutex
	store  ListStore
	logger *slog.Logger
}

// NewListService creates a ListService.
func NewListService(store ListStore, logger *slog.Logger) *ListService {
	return &ListService{store: store, logger: logger}
}

// Get returns every picklist.
func (s *ListService) Get(ctx context.Context) (*settings.SystemLists, error) {
	lists, err := s.store.Load(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load system lists", err)
	}
	return &lists, nil
}

// Add inserts item into list and returns the updated list.
func (s *ListService) Add(ctx context.Context, actor Actor, list settings.ListName, item string) ([]string, error) {
	return s.edit(ctx, actor, list, func(l *settings.SystemLists) ([]string, error) {
		return l.Add(list, item)
	})
}

// Remove deletes item from list and returns the updated list.
func (s *ListService) Remove(ctx context.Context, actor Actor, list settings.ListName, item string) ([]string, error) {
	return s.edit(ctx, actor, list, func(l *settings.SystemLists) ([]string, error) {
		return l.Remove(list, item)
	})
}

func (s *ListService) edit(ctx context.Context, actor Actor, list settings.ListName, apply func(*settings.SystemLists) ([]string, error)) ([]string, error) {
	if !actor.Role.CanApproveUsers() {
		return nil, domain.ErrForbidden("only directors and admins can edit lists")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.store.Load(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load system lists", err)
	}
	items, err := apply(&lists)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, lists); err != nil {
		return nil, domain.ErrInternal("save system lists", err)
	}
	s.logger.Info("system list edited", "list", list, "size", len(items), "actor", actor.Email)
	return items, nil
}
