package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/proneo/platform/internal/alerts"
	"github.com/proneo/platform/internal/dismissal"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/feed"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/settings"
)

// SnapshotReader returns the latest roster snapshot.
type SnapshotReader interface {
	Current() roster.Snapshot
}

// AlertService builds per-device alert feeds and records dismissals.
type AlertService struct {
	snapshots  SnapshotReader
	dismissals *dismissal.Registry
	settings   *settings.Registry
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewAlertService creates an AlertService. Calendar days are taken in loc.
func NewAlertService(snapshots SnapshotReader, dismissals *dismissal.Registry, toggles *settings.Registry, loc *time.Location, logger *slog.Logger) *AlertService {
	if loc == nil {
		loc = time.UTC
	}
	return &AlertService{
		snapshots:  snapshots,
		dismissals: dismissals,
		settings:   toggles,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// FeedQuery selects whose feed to build and how to filter it.
type FeedQuery struct {
	DeviceID string
	Role     domain.Role
	Category domain.Category
	// Now overrides the clock; zero means the current time.
	Now time.Time
}

// FeedResult is one rendered feed. Categories counts every visible alert per
// category regardless of the active filter, for tab badges.
type FeedResult struct {
	Alerts     []domain.Alert          `json:"alerts"`
	Total      int                     `json:"total"`
	Categories map[domain.Category]int `json:"categories"`
	Version    uint64                  `json:"version"`
}

// Feed derives candidates from the current snapshot and applies the device's
// toggles, dismissals and the category filter.
func (s *AlertService) Feed(ctx context.Context, q FeedQuery) (*FeedResult, error) {
	if err := requireDevice(q.DeviceID); err != nil {
		return nil, err
	}
	category := q.Category
	if category == "" {
		category = domain.CategoryAll
	}
	if err := domain.ValidateCategoryFilter(category); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	store, err := s.dismissals.For(ctx, q.DeviceID)
	if err != nil {
		return nil, domain.ErrInternal("load dismissals", err)
	}
	toggles, err := s.settings.For(ctx, q.DeviceID)
	if err != nil {
		return nil, domain.ErrInternal("load alert settings", err)
	}

	now := s.clock(q.Now)
	snap := s.snapshots.Current()
	candidates := alerts.Derive(snap.Players, snap.Pending, q.Role, now)
	visible := feed.Build(candidates, store, toggles.Toggles(), domain.CategoryAll, now)
	filtered := feed.FilterCategory(visible, category)

	return &FeedResult{
		Alerts:     filtered,
		Total:      len(filtered),
		Categories: feed.CountByCategory(visible),
		Version:    snap.Version,
	}, nil
}

// Complete hides alertID on deviceID permanently.
func (s *AlertService) Complete(ctx context.Context, deviceID, alertID string) error {
	store, err := s.dismissalStore(ctx, deviceID, alertID)
	if err != nil {
		return err
	}
	if err := store.Complete(ctx, alertID); err != nil {
		return domain.ErrInternal("save completion", err)
	}
	s.logger.Info("alert completed", "device_id", deviceID, "alert_id", alertID)
	return nil
}

// Snooze hides alertID on deviceID for one day and returns when it returns.
func (s *AlertService) Snooze(ctx context.Context, deviceID, alertID string) (time.Time, error) {
	store, err := s.dismissalStore(ctx, deviceID, alertID)
	if err != nil {
		return time.Time{}, err
	}
	now := s.clock(time.Time{})
	if err := store.Snooze(ctx, alertID, now); err != nil {
		return time.Time{}, domain.ErrInternal("save snooze", err)
	}
	until := now.Add(dismissal.SnoozeDuration)
	s.logger.Info("alert snoozed", "device_id", deviceID, "alert_id", alertID, "until", until)
	return until, nil
}

// Reset forgets every dismissal of deviceID.
func (s *AlertService) Reset(ctx context.Context, deviceID string) error {
	if err := requireDevice(deviceID); err != nil {
		return err
	}
	store, err := s.dismissals.For(ctx, deviceID)
	if err != nil {
		return domain.ErrInternal("load dismissals", err)
	}
	if err := store.Reset(ctx); err != nil {
		return domain.ErrInternal("reset dismissals", err)
	}
	return nil
}

// Settings returns the per-kind toggles of deviceID.
func (s *AlertService) Settings(ctx context.Context, deviceID string) (feed.Toggles, error) {
	if err := requireDevice(deviceID); err != nil {
		return nil, err
	}
	st, err := s.settings.For(ctx, deviceID)
	if err != nil {
		return nil, domain.ErrInternal("load alert settings", err)
	}
	return st.Toggles(), nil
}

// UpdateSetting switches one kind on or off. Mandatory kinds cannot be
// switched off.
func (s *AlertService) UpdateSetting(ctx context.Context, deviceID string, kind domain.AlertKind, enabled bool) (feed.Toggles, error) {
	if err := requireDevice(deviceID); err != nil {
		return nil, err
	}
	st, err := s.settings.For(ctx, deviceID)
	if err != nil {
		return nil, domain.ErrInternal("load alert settings", err)
	}
	if err := st.Set(ctx, kind, enabled); err != nil {
		return nil, err
	}
	return st.Toggles(), nil
}

func (s *AlertService) dismissalStore(ctx context.Context, deviceID, alertID string) (*dismissal.Store, error) {
	if err := requireDevice(deviceID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(alertID) == "" {
		return nil, domain.ErrValidation("alert id is required")
	}
	store, err := s.dismissals.For(ctx, deviceID)
	if err != nil {
		return nil, domain.ErrInternal("load dismissals", err)
	}
	return store, nil
}

func (s *AlertService) clock(override time.Time) time.Time {
	if override.IsZero() {
		override = s.now()
	}
	return override.In(s.loc)
}

func requireDevice(deviceID string) error {
	if strings.TrimSpace(deviceID) == "" {
		return domain.ErrValidation("device id is required")
	}
	return nil
}
