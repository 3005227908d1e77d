// Package feed turns derived candidates into the ordered list a device shows.
package feed

import (
	"slices"
	"time"

	"github.com/proneo/platform/internal/domain"
)

// Suppressor answers whether an alert id is currently dismissed on this device.
type Suppressor interface {
	IsSuppressed(id string, now time.Time) bool
}

// Toggles maps alert kinds to their enabled state. Kinds absent from the map
// are enabled.
type Toggles map[domain.AlertKind]bool

// Enabled reports whether alerts of kind k are shown.
func (t Toggles) Enabled(k domain.AlertKind) bool {
	enabled, ok := t[k]
	return !ok || enabled
}

// Build applies, in order: kind toggles, dismissal suppression, the category
// filter and the stable priority sort. candidates is not modified.
func Build(candidates []domain.Alert, sup Suppressor, toggles Toggles, category domain.Category, now time.Time) []domain.Alert {
	out := FilterSettings(candidates, toggles)
	out = FilterSuppressed(out, sup, now)
	out = FilterCategory(out, category)
	SortByPriority(out)
	return out
}

// FilterSettings drops alerts whose kind is toggled off. Mandatory kinds are
// not re-checked here; settings.AlertSettings refuses to disable them.
func FilterSettings(alerts []domain.Alert, toggles Toggles) []domain.Alert {
	return keep(alerts, func(a domain.Alert) bool { return toggles.Enabled(a.Kind) })
}

// FilterSuppressed drops completed alerts and alerts still inside a snooze window.
func FilterSuppressed(alerts []domain.Alert, sup Suppressor, now time.Time) []domain.Alert {
	if sup == nil {
		return keep(alerts, func(domain.Alert) bool { return true })
	}
	return keep(alerts, func(a domain.Alert) bool { return !sup.IsSuppressed(a.ID, now) })
}

// FilterCategory keeps alerts of the given category. "Todos" and "" keep all.
func FilterCategory(alerts []domain.Alert, category domain.Category) []domain.Alert {
	if category == "" || category == domain.CategoryAll {
		return keep(alerts, func(domain.Alert) bool { return true })
	}
	return keep(alerts, func(a domain.Alert) bool { return a.Category == category })
}

// SortByPriority orders alerts by descending priority score in place.
// Alerts with equal priority keep their relative order.
func SortByPriority(alerts []domain.Alert) {
	slices.SortStableFunc(alerts, func(a, b domain.Alert) int {
		return b.Priority.Score() - a.Priority.Score()
	})
}

// CountByCategory returns how many alerts fall in each category.
func CountByCategory(alerts []domain.Alert) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, a := range alerts {
		counts[a.Category]++
	}
	return counts
}

func keep(alerts []domain.Alert, pred func(domain.Alert) bool) []domain.Alert {
	out := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}
