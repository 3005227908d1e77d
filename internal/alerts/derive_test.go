package alerts

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/proneo/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func isoIn(days int) string {
	return CalendarDay(refNow).AddDate(0, 0, days).Format(isoLayout)
}

func representedPlayer(id, agencyEnd string) domain.Player {
	return domain.Player{
		ID:       id,
		Name:     "Player " + id,
		Category: domain.CategoryFutsal,
		Proneo:   &domain.AgencyLink{AgencyEndDate: agencyEnd},
	}
}

func clausePlayer(id, notice string, scouting bool) domain.Player {
	return domain.Player{
		ID:         id,
		Name:       "Player " + id,
		IsScouting: scouting,
		Contract:   &domain.PlayerContract{OptionalNoticeDate: notice},
	}
}

func alertIDs(alerts []domain.Alert) []string {
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	return ids
}

func sampleRoster() ([]domain.Player, []domain.PendingUserRequest) {
	players := []domain.Player{
		{ID: "p1", Name: "Dani", BirthDate: "1990-03-15", Category: domain.CategoryFootball},
		{ID: "p2", Name: "Lucía", BirthDate: "16/03/1998", Category: domain.CategoryWomen},
		representedPlayer("p3", isoIn(90)),
		clausePlayer("p4", isoIn(10), true),
		{ID: "p5", Name: "Broken", BirthDate: "not-a-date", Proneo: &domain.AgencyLink{AgencyEndDate: "??"}},
	}
	pending := []domain.PendingUserRequest{
		{ID: "new@proneo.com", Name: "Nuevo", Email: "new@proneo.com"},
	}
	return players, pending
}

func TestDerive_Deterministic(t *testing.T) {
	players, pending := sampleRoster()

	first := Derive(players, pending, domain.RoleAdmin, refNow)
	second := Derive(players, pending, domain.RoleAdmin, refNow)

	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("derivation not deterministic (-first +second):\n%s", diff)
	}
}

func TestDerive_OrderAndIDs(t *testing.T) {
	players, pending := sampleRoster()

	got := Derive(players, pending, domain.RoleDirector, refNow)

	assert.Equal(t, []string{
		"user-req-new@proneo.com",
		"bday-p1",
		"bday-p2",
		"agency-end-p3",
		"clause-p4",
	}, alertIDs(got))
}

func TestDerive_UniqueIDsWithDuplicateRecords(t *testing.T) {
	p := domain.Player{ID: "dup", BirthDate: "1990-03-15"}
	req := domain.PendingUserRequest{ID: "x@proneo.com", Email: "x@proneo.com"}

	got := Derive([]domain.Player{p, p}, []domain.PendingUserRequest{req, req}, domain.RoleAdmin, refNow)

	seen := map[string]bool{}
	for _, a := range got {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
	assert.Len(t, got, 2)
}

func TestDerive_EmptyInputs(t *testing.T) {
	assert.Empty(t, Derive(nil, nil, domain.RoleAdmin, refNow))
}

func TestDerive_RoleGating(t *testing.T) {
	_, pending := sampleRoster()
	pending = append(pending, domain.PendingUserRequest{ID: "b@proneo.com", Name: "B", Email: "b@proneo.com"})

	for _, role := range domain.Roles() {
		t.Run(string(role), func(t *testing.T) {
			got := Derive(nil, pending, role, refNow)
			if role == domain.RoleAdmin || role == domain.RoleDirector {
				assert.Len(t, got, 2)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestUserApprovalAlert(t *testing.T) {
	a, ok := UserApprovalAlert(domain.PendingUserRequest{ID: "n@p.com", Name: "Nora", Email: "n@p.com"})
	require.True(t, ok)
	assert.Equal(t, "user-req-n@p.com", a.ID)
	assert.Equal(t, domain.KindUserApproval, a.Kind)
	assert.Equal(t, domain.PriorityCritical, a.Priority)
	assert.Equal(t, domain.CategorySecurity, a.Category)
	assert.Equal(t, "Nora solicita acceso al sistema.", a.Message)
	require.NotNil(t, a.Request)
	assert.Equal(t, "n@p.com", a.Request.Email)
	assert.Nil(t, a.DaysRemaining)
}

func TestBirthdayAlert(t *testing.T) {
	p := domain.Player{ID: "p1", Name: "Dani", BirthDate: "1990-03-15"}

	t.Run("today", func(t *testing.T) {
		a, ok := BirthdayAlert(p, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, "bday-p1", a.ID)
		assert.Equal(t, "¡Cumpleaños!", a.Title)
		assert.Contains(t, a.Message, "34")
		assert.Equal(t, "Dani cumple 34 años.", a.Message)
		assert.Equal(t, domain.PriorityNormal, a.Priority)
		assert.Equal(t, domain.CategoryFootball, a.Category)
	})

	t.Run("tomorrow", func(t *testing.T) {
		a, ok := BirthdayAlert(p, time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, "Cumpleaños (Mañana)", a.Title)
		// Age is computed from the current year, the day before the birthday too.
		assert.Equal(t, "Dani cumple 34 años.", a.Message)
	})

	t.Run("day after", func(t *testing.T) {
		_, ok := BirthdayAlert(p, time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC))
		assert.False(t, ok)
	})

	t.Run("slash format", func(t *testing.T) {
		a, ok := BirthdayAlert(domain.Player{ID: "p2", Name: "Lucía", BirthDate: "15/03/2000"}, refNow)
		require.True(t, ok)
		assert.Equal(t, "Lucía cumple 24 años.", a.Message)
	})

	t.Run("unpadded iso", func(t *testing.T) {
		a, ok := BirthdayAlert(domain.Player{ID: "p4", Name: "Marta", BirthDate: "1990-3-15"}, refNow)
		require.True(t, ok)
		assert.Equal(t, "Marta cumple 34 años.", a.Message)
	})

	t.Run("tomorrow across year end", func(t *testing.T) {
		_, ok := BirthdayAlert(domain.Player{ID: "p3", BirthDate: "01/01/2001"}, time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC))
		assert.True(t, ok)
	})

	t.Run("scouting players have birthdays too", func(t *testing.T) {
		_, ok := BirthdayAlert(domain.Player{ID: "s1", BirthDate: "2005-03-15", IsScouting: true}, refNow)
		assert.True(t, ok)
	})
}

func TestAgencyRenewalAlert_WindowBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want bool
	}{
		{180, false},
		{179, true},
		{0, true},
		{-1, false},
	}
	for _, tt := range tests {
		_, ok := AgencyRenewalAlert(representedPlayer("p", isoIn(tt.days)), refNow)
		assert.Equal(t, tt.want, ok, "days=%d", tt.days)
	}
}

func TestAgencyRenewalAlert_Content(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC).Format("02/01/2006")
	a, ok := AgencyRenewalAlert(representedPlayer("p3", end), refNow)
	require.True(t, ok)

	require.NotNil(t, a.DaysRemaining)
	assert.Equal(t, 107, *a.DaysRemaining)
	assert.Equal(t, "agency-end-p3", a.ID)
	assert.Equal(t, domain.PriorityHigh, a.Priority)
	assert.Equal(t, domain.CategoryFutsal, a.Category)
	assert.Equal(t, "Vence en 3 meses (30/06/2024).", a.Message)
}

func TestAgencyRenewalAlert_SkipsScoutingAndMissing(t *testing.T) {
	scout := representedPlayer("s", isoIn(30))
	scout.IsScouting = true
	_, ok := AgencyRenewalAlert(scout, refNow)
	assert.False(t, ok)

	_, ok = AgencyRenewalAlert(domain.Player{ID: "nolink"}, refNow)
	assert.False(t, ok)
}

func TestOptionalClauseAlert_WindowBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want bool
	}{
		{60, false},
		{59, true},
		{0, true},
		{-1, false},
	}
	for _, tt := range tests {
		_, ok := OptionalClauseAlert(clausePlayer("p", isoIn(tt.days), false), refNow)
		assert.Equal(t, tt.want, ok, "days=%d", tt.days)
	}
}

func TestOptionalClauseAlert_Content(t *testing.T) {
	a, ok := OptionalClauseAlert(clausePlayer("p4", isoIn(12), true), refNow)
	require.True(t, ok)

	assert.Equal(t, "clause-p4", a.ID)
	assert.Equal(t, domain.PriorityCritical, a.Priority)
	assert.Equal(t, domain.CategoryFootball, a.Category)
	assert.Equal(t, "Límite: "+isoIn(12)+" (12 días).", a.Message)
	require.NotNil(t, a.Player)
	assert.Equal(t, "p4", a.Player.ID)
}

func TestDerive_MalformedDatesNeverAlert(t *testing.T) {
	players := []domain.Player{
		{ID: "m1", BirthDate: "not-a-date"},
		{ID: "m2", BirthDate: "32/13/1990", Proneo: &domain.AgencyLink{AgencyEndDate: "soon"}},
		{ID: "m3", Contract: &domain.PlayerContract{OptionalNoticeDate: "--"}},
		{ID: "m4", Proneo: &domain.AgencyLink{}, Contract: &domain.PlayerContract{}},
	}

	assert.NotPanics(t, func() {
		assert.Empty(t, Derive(players, nil, domain.RoleAdmin, refNow))
	})
}
