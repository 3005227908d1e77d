package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/proneo/platform/internal/alerts"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/feed"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/settings"
)

// DigestTitle heads every digest push.
const DigestTitle = "Avisos Proneo"

// SnapshotReader returns the latest roster snapshot.
type SnapshotReader interface {
	Current() roster.Snapshot
}

// TokenSource lists the push tokens of users holding any of roles.
type TokenSource interface {
	TokensForRoles(ctx context.Context, roles []domain.Role) ([]string, error)
}

// Digest sends one morning summary of urgent alerts to approvers.
type Digest struct {
	snapshots SnapshotReader
	tokens    TokenSource
	sender    Sender
	loc       *time.Location
	logger    *slog.Logger
}

// NewDigest creates a digest job. Dates are evaluated in loc.
func NewDigest(snapshots SnapshotReader, tokens TokenSource, sender Sender, loc *time.Location, logger *slog.Logger) *Digest {
	if loc == nil {
		loc = time.UTC
	}
	return &Digest{snapshots: snapshots, tokens: tokens, sender: sender, loc: loc, logger: logger}
}

// Summary counts the alerts a digest would report.
type Summary struct {
	Urgent   int
	Critical int
}

// Body renders the push body.
func (s Summary) Body() string {
	return fmt.Sprintf("%d avisos pendientes (%d críticos)", s.Urgent, s.Critical)
}

// Summarize derives the approver feed for now and counts critical and high
// alerts. Device dismissals do not apply.
func Summarize(snap roster.Snapshot, now time.Time) Summary {
	candidates := alerts.Derive(snap.Players, snap.Pending, domain.RoleAdmin, now)
	visible := feed.Build(candidates, nil, settings.Defaults(), domain.CategoryAll, now)

	var s Summary
	for _, a := range visible {
		switch a.Priority {
		case domain.PriorityCritical:
			s.Critical++
			s.Urgent++
		case domain.PriorityHigh:
			s.Urgent++
		}
	}
	return s
}

// Run sends the digest for the current snapshot. Nothing is sent when no
// urgent alert exists or no approver has a registered device.
func (d *Digest) Run(ctx context.Context, now time.Time) error {
	summary := Summarize(d.snapshots.Current(), now.In(d.loc))
	if summary.Urgent == 0 {
		d.logger.Info("digest skipped", "reason", "no urgent alerts")
		return nil
	}

	tokens, err := d.tokens.TokensForRoles(ctx, []domain.Role{domain.RoleDirector, domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("load approver tokens: %w", err)
	}
	if len(tokens) == 0 {
		d.logger.Info("digest skipped", "reason", "no approver devices")
		return nil
	}

	push := Push{
		Title:  DigestTitle,
		Body:   summary.Body(),
		Tokens: tokens,
		Data: map[string]string{
			"urgent":   strconv.Itoa(summary.Urgent),
			"critical": strconv.Itoa(summary.Critical),
		},
	}
	if err := d.sender.Send(ctx, push); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	d.logger.Info("digest sent", "urgent", summary.Urgent, "critical", summary.Critical, "devices", len(tokens))
	return nil
}
