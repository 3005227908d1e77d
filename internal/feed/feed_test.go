package feed

import (
	"testing"
	"time"

	"github.com/proneo/platform/internal/alerts"
	"github.com/proneo/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type stubSuppressor map[string]time.Time

func (s stubSuppressor) IsSuppressed(id string, at time.Time) bool {
	until, ok := s[id]
	if !ok {
		return false
	}
	return until.IsZero() || at.Before(until)
}

func alert(id string, kind domain.AlertKind, p domain.Priority, c domain.Category) domain.Alert {
	return domain.Alert{ID: id, Kind: kind, Priority: p, Category: c}
}

func ids(alerts []domain.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestToggles_MissingKindsAreEnabled(t *testing.T) {
	var nilToggles Toggles
	assert.True(t, nilToggles.Enabled(domain.KindBirthday))
	assert.False(t, Toggles{domain.KindBirthday: false}.Enabled(domain.KindBirthday))
	assert.True(t, Toggles{domain.KindBirthday: false}.Enabled(domain.KindOptionalClause))
}

func TestFilterSettings_DisabledMandatoryKindIsStillFiltered(t *testing.T) {
	p := domain.Player{ID: "p1", Proneo: &domain.AgencyLink{AgencyEndDate: "2024-04-15"}}
	candidates := alerts.Derive([]domain.Player{p}, nil, domain.RoleScout, now)

	// Derivation ignores toggles entirely.
	assert.Equal(t, []string{"agency-end-p1"}, ids(candidates))

	got := FilterSettings(candidates, Toggles{domain.KindAgencyRenewal: false})
	assert.Empty(t, got)

	got = FilterSettings(candidates, Toggles{domain.KindAgencyRenewal: true})
	assert.Len(t, got, 1)
}

func TestFilterSuppressed(t *testing.T) {
	in := []domain.Alert{
		alert("done", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("snoozed", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("expired", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("fresh", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
	}
	sup := stubSuppressor{
		"done":    {},
		"snoozed": now.Add(time.Hour),
		"expired": now.Add(-time.Minute),
	}

	assert.Equal(t, []string{"expired", "fresh"}, ids(FilterSuppressed(in, sup, now)))
	assert.Len(t, FilterSuppressed(in, nil, now), 4)
}

func TestFilterCategory(t *testing.T) {
	in := []domain.Alert{
		alert("a", domain.KindUserApproval, domain.PriorityCritical, domain.CategorySecurity),
		alert("b", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFutsal),
		alert("c", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
	}

	assert.Len(t, FilterCategory(in, domain.CategoryAll), 3)
	assert.Len(t, FilterCategory(in, ""), 3)
	assert.Equal(t, []string{"b"}, ids(FilterCategory(in, domain.CategoryFutsal)))
	assert.Equal(t, []string{"a"}, ids(FilterCategory(in, domain.CategorySecurity)))
	assert.Empty(t, FilterCategory(in, domain.CategoryCoaches))
}

func TestSortByPriority_Stable(t *testing.T) {
	in := []domain.Alert{
		alert("n1", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("A", domain.KindOptionalClause, domain.PriorityCritical, domain.CategoryFootball),
		alert("h1", domain.KindAgencyRenewal, domain.PriorityHigh, domain.CategoryFootball),
		alert("B", domain.KindUserApproval, domain.PriorityCritical, domain.CategorySecurity),
		alert("n2", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
	}

	SortByPriority(in)

	assert.Equal(t, []string{"A", "B", "h1", "n1", "n2"}, ids(in))
}

func TestBuild_FullPipeline(t *testing.T) {
	candidates := []domain.Alert{
		alert("bday-1", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("agency-end-2", domain.KindAgencyRenewal, domain.PriorityHigh, domain.CategoryFootball),
		alert("clause-3", domain.KindOptionalClause, domain.PriorityCritical, domain.CategoryFutsal),
		alert("clause-4", domain.KindOptionalClause, domain.PriorityCritical, domain.CategoryFootball),
		alert("bday-5", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
	}
	original := append([]domain.Alert(nil), candidates...)

	got := Build(candidates, stubSuppressor{"bday-5": {}}, Toggles{domain.KindUserApproval: false}, domain.CategoryFootball, now)

	assert.Equal(t, []string{"clause-4", "agency-end-2", "bday-1"}, ids(got))
	assert.Equal(t, original, candidates, "input must not be reordered")
}

func TestCountByCategory(t *testing.T) {
	counts := CountByCategory([]domain.Alert{
		alert("a", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("b", domain.KindBirthday, domain.PriorityNormal, domain.CategoryFootball),
		alert("c", domain.KindUserApproval, domain.PriorityCritical, domain.CategorySecurity),
	})
	assert.Equal(t, 2, counts[domain.CategoryFootball])
	assert.Equal(t, 1, counts[domain.CategorySecurity])
}
