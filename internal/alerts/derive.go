// Package alerts derives the notification feed from a roster snapshot.
// Every function here is pure: no I/O, no clock reads, no errors.
package alerts

import (
	"fmt"
	"time"

	"github.com/proneo/platform/internal/domain"
)

// Alert windows, in calendar days. Both are exclusive upper bounds.
const (
	AgencyRenewalWindow  = 180
	OptionalClauseWindow = 60
)

// Derive computes every candidate alert for the given snapshot as seen by an
// actor with the given role at instant now. Output order is access requests,
// then birthdays, then agency renewals, then optional clauses, each in input
// order. Ids are unique: repeated source records only contribute once.
func Derive(players []domain.Player, pending []domain.PendingUserRequest, role domain.Role, now time.Time) []domain.Alert {
	var out []domain.Alert
	seen := make(map[string]bool)
	emit := func(a domain.Alert, ok bool) {
		if !ok || seen[a.ID] {
			return
		}
		seen[a.ID] = true
		out = append(out, a)
	}

	if role.CanApproveUsers() {
		for _, req := range pending {
			emit(UserApprovalAlert(req))
		}
	}
	for _, p := range players {
		emit(BirthdayAlert(p, now))
	}
	for _, p := range players {
		emit(AgencyRenewalAlert(p, now))
	}
	for _, p := range players {
		emit(OptionalClauseAlert(p, now))
	}
	return out
}

// UserApprovalAlert surfaces a pending access request. Role gating happens in Derive.
func UserApprovalAlert(req domain.PendingUserRequest) (domain.Alert, bool) {
	r := req
	name := r.Name
	if name == "" {
		name = r.Email
	}
	return domain.Alert{
		ID:       "user-req-" + r.ID,
		Kind:     domain.KindUserApproval,
		Priority: domain.PriorityCritical,
		Category: domain.CategorySecurity,
		Title:    "Acceso Pendiente",
		Message:  fmt.Sprintf("%s solicita acceso al sistema.", name),
		Subject:  name,
		Request:  &r,
	}, true
}

// BirthdayAlert fires when the player's birthday (day and month) is today or
// tomorrow. The age shown is now.Year() minus the birth year, also for the
// "tomorrow" variant.
func BirthdayAlert(p domain.Player, now time.Time) (domain.Alert, bool) {
	dob, ok := ParseDate(p.BirthDate)
	if !ok {
		return domain.Alert{}, false
	}

	today := CalendarDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	sameDay := func(d time.Time) bool { return dob.Day() == d.Day() && dob.Month() == d.Month() }

	var title string
	switch {
	case sameDay(today):
		title = "¡Cumpleaños!"
	case sameDay(tomorrow):
		title = "Cumpleaños (Mañana)"
	default:
		return domain.Alert{}, false
	}

	return domain.Alert{
		ID:       "bday-" + p.ID,
		Kind:     domain.KindBirthday,
		Priority: domain.PriorityNormal,
		Category: p.SportCategory(),
		Title:    title,
		Message:  fmt.Sprintf("%s cumple %d años.", p.DisplayName(), now.Year()-dob.Year()),
		Subject:  p.DisplayName(),
		Player:   &p,
	}, true
}

// AgencyRenewalAlert fires for represented (non-scouting) players whose agency
// agreement ends within the renewal window.
func AgencyRenewalAlert(p domain.Player, now time.Time) (domain.Alert, bool) {
	if p.IsScouting {
		return domain.Alert{}, false
	}
	raw := p.AgencyEndDate()
	end, ok := ParseDate(raw)
	if !ok {
		return domain.Alert{}, false
	}
	days := DaysUntil(end, now)
	if days < 0 || days >= AgencyRenewalWindow {
		return domain.Alert{}, false
	}

	return domain.Alert{
		ID:            "agency-end-" + p.ID,
		Kind:          domain.KindAgencyRenewal,
		Priority:      domain.PriorityHigh,
		Category:      p.SportCategory(),
		Title:         "Renovación Agencia",
		Message:       fmt.Sprintf("Vence en %d meses (%s).", days/30, raw),
		Subject:       p.DisplayName(),
		DaysRemaining: &days,
		Player:        &p,
	}, true
}

// OptionalClauseAlert fires for any player, scouting included, whose optional
// extension notice deadline falls within the clause window.
func OptionalClauseAlert(p domain.Player, now time.Time) (domain.Alert, bool) {
	raw := p.OptionalNoticeDate()
	notice, ok := ParseDate(raw)
	if !ok {
		return domain.Alert{}, false
	}
	days := DaysUntil(notice, now)
	if days < 0 || days >= OptionalClauseWindow {
		return domain.Alert{}, false
	}

	return domain.Alert{
		ID:            "clause-" + p.ID,
		Kind:          domain.KindOptionalClause,
		Priority:      domain.PriorityCritical,
		Category:      p.SportCategory(),
		Title:         "Cláusula Opcional",
		Message:       fmt.Sprintf("Límite: %s (%d días).", raw, days),
		Subject:       p.DisplayName(),
		DaysRemaining: &days,
		Player:        &p,
	}, true
}
