package domain

// AlertKind identifies which rule produced an alert.
type AlertKind string

const (
	KindUserApproval   AlertKind = "user_approval"
	KindBirthday       AlertKind = "birthday"
	KindAgencyRenewal  AlertKind = "agency_renewal"
	KindOptionalClause AlertKind = "optional_clause"
)

// AlertKinds returns every alert kind.
func AlertKinds() []AlertKind {
	return []AlertKind{KindUserApproval, KindBirthday, KindAgencyRenewal, KindOptionalClause}
}

// Valid reports whether k is a known kind.
func (k AlertKind) Valid() bool {
	for _, known := range AlertKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Mandatory kinds cannot be switched off in the alert settings.
func (k AlertKind) Mandatory() bool {
	return k == KindAgencyRenewal || k == KindOptionalClause
}

// Priority orders alerts in the feed.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
)

// Score is the sort weight of a priority. Unknown priorities sort last.
func (p Priority) Score() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	}
	return 0
}

// Alert is a derived notification. It is recomputed from the roster on
// every change and never persisted.
type Alert struct {
	ID            string              `json:"id"`
	Kind          AlertKind           `json:"kind"`
	Priority      Priority            `json:"priority"`
	Category      Category            `json:"category"`
	Title         string              `json:"title"`
	Message       string              `json:"message"`
	Subject       string              `json:"subject"`
	DaysRemaining *int                `json:"daysRemaining,omitempty"`
	Player        *Player             `json:"player,omitempty"`
	Request       *PendingUserRequest `json:"request,omitempty"`
}
