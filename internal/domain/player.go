package domain

import "strings"

// Category is the sport/practice area a player or alert belongs to.
type Category string

const (
	CategoryFootball Category = "Fútbol"
	CategoryFutsal   Category = "F. Sala"
	CategoryWomen    Category = "Femenino"
	CategoryCoaches  Category = "Entrenadores"

	// CategorySecurity groups access-request alerts. It never matches a sport filter.
	CategorySecurity Category = "Seguridad"

	// CategoryAll is the filter value that keeps every category.
	CategoryAll Category = "Todos"
)

// SportCategories returns the sport categories in display order.
func SportCategories() []Category {
	return []Category{CategoryFootball, CategoryFutsal, CategoryWomen, CategoryCoaches}
}

// IsSport reports whether c is one of the four sport categories.
func (c Category) IsSport() bool {
	for _, s := range SportCategories() {
		if c == s {
			return true
		}
	}
	return false
}

// PlayerContract is the club contract sub-document.
type PlayerContract struct {
	EndDate            string `firestore:"endDate" json:"endDate"`
	Clause             string `firestore:"clause" json:"clause"`
	Optional           string `firestore:"optional,omitempty" json:"optional,omitempty"`
	OptionalNoticeDate string `firestore:"optionalNoticeDate,omitempty" json:"optionalNoticeDate,omitempty"`
	Conditions         string `firestore:"conditions,omitempty" json:"conditions,omitempty"`
}

// AgencyLink is the representation agreement between the player and the agency.
type AgencyLink struct {
	ContractDate  string  `firestore:"contractDate" json:"contractDate"`
	AgencyEndDate string  `firestore:"agencyEndDate" json:"agencyEndDate"`
	CommissionPct float64 `firestore:"commissionPct" json:"commissionPct"`
	PayerType     string  `firestore:"payerType" json:"payerType"`
}

// ScoutingInfo is only populated for scouting targets.
type ScoutingInfo struct {
	Status          string `firestore:"status" json:"status"`
	Notes           string `firestore:"notes" json:"notes"`
	CurrentAgent    string `firestore:"currentAgent" json:"currentAgent"`
	AgentEndDate    string `firestore:"agentEndDate" json:"agentEndDate"`
	ContractType    string `firestore:"contractType" json:"contractType"`
	ContractEnd     string `firestore:"contractEnd" json:"contractEnd"`
	LastContactDate string `firestore:"lastContactDate" json:"lastContactDate"`
}

// Player is a roster record as stored in the players collection.
// Nested sub-documents are pointers; nil means the document lacks them.
type Player struct {
	ID              string          `firestore:"-" json:"id"`
	FirstName       string          `firestore:"firstName" json:"firstName"`
	LastName1       string          `firestore:"lastName1" json:"lastName1"`
	LastName2       string          `firestore:"lastName2" json:"lastName2"`
	Name            string          `firestore:"name" json:"name"`
	Nationality     string          `firestore:"nationality" json:"nationality"`
	BirthDate       string          `firestore:"birthDate" json:"birthDate"`
	Club            string          `firestore:"club" json:"club"`
	League          string          `firestore:"league" json:"league"`
	Position        string          `firestore:"position" json:"position"`
	PreferredFoot   string          `firestore:"preferredFoot" json:"preferredFoot"`
	Category        Category        `firestore:"category" json:"category"`
	Contract        *PlayerContract `firestore:"contract,omitempty" json:"contract,omitempty"`
	Proneo          *AgencyLink     `firestore:"proneo,omitempty" json:"proneo,omitempty"`
	IsScouting      bool            `firestore:"isScouting" json:"isScouting"`
	Scouting        *ScoutingInfo   `firestore:"scouting,omitempty" json:"scouting,omitempty"`
	MonitoringAgent string          `firestore:"monitoringAgent,omitempty" json:"monitoringAgent,omitempty"`
	CreatedAt       int64           `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       int64           `firestore:"updatedAt" json:"updatedAt"`
}

// DisplayName prefers the stored name and falls back to first + last names.
func (p Player) DisplayName() string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return strings.TrimSpace(strings.Join([]string{p.FirstName, p.LastName1, p.LastName2}, " "))
}

// SportCategory returns the player's category, defaulting to football.
func (p Player) SportCategory() Category {
	if p.Category == "" {
		return CategoryFootball
	}
	return p.Category
}

// AgencyEndDate returns proneo.agencyEndDate or "" when absent.
func (p Player) AgencyEndDate() string {
	if p.Proneo == nil {
		return ""
	}
	return p.Proneo.AgencyEndDate
}

// OptionalNoticeDate returns contract.optionalNoticeDate or "" when absent.
func (p Player) OptionalNoticeDate() string {
	if p.Contract == nil {
		return ""
	}
	return p.Contract.OptionalNoticeDate
}
