package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/proneo/platform/internal/domain"
)

// ListName identifies one picklist of the settings/system_lists document.
type ListName string

const (
	ListClubs      ListName = "clubs"
	ListLeagues    ListName = "leagues"
	ListAgents     ListName = "agents"
	ListPositions  ListName = "positions"
	ListBrands     ListName = "brands"
	ListSelections ListName = "selections"
	ListFeet       ListName = "feet"
)

// ListNames returns every picklist name.
func ListNames() []ListName {
	return []ListName{ListClubs, ListLeagues, ListAgents, ListPositions, ListBrands, ListSelections, ListFeet}
}

// SystemLists are the shared picklists used by roster forms.
type SystemLists struct {
	Clubs      []string `firestore:"clubs" json:"clubs"`
	Leagues    []string `firestore:"leagues" json:"leagues"`
	Agents     []string `firestore:"agents" json:"agents"`
	Positions  []string `firestore:"positions" json:"positions"`
	Brands     []string `firestore:"brands" json:"brands"`
	Selections []string `firestore:"selections" json:"selections"`
	Feet       []string `firestore:"feet" json:"feet"`
}

// DefaultSystemLists is the seed written when the document has no clubs.
func DefaultSystemLists() SystemLists {
	return SystemLists{
		Leagues:    []string{"España", "Italia", "Bélgica", "Polonia", "Dubai", "Brasil"},
		Clubs:      []string{"FC Barcelona", "ElPozo Murcia", "Inter Movistar", "Palma Futsal", "Jimbee Cartagena", "Manzanares FS", "Jaén Paraíso", "Industrias Santa Coloma"},
		Positions:  []string{"Portero", "Ala", "Cierre", "Pivot", "Ala/Cierre", "Ala/Pivot", "Entrenador", "Defensa", "Mediocentro", "Extremo", "Delantero"},
		Brands:     []string{"Joma", "Adidas", "Nike", "Munich", "Senda", "Luanvi"},
		Agents:     []string{"Jaume", "Joan Francesc", "Albert Redondo"},
		Selections: []string{"No", "Si", "Sub-17", "Sub-19", "Sub-21", "Absoluta"},
		Feet:       []string{"Derecha", "Izquierda", "Ambas", "Ambidiestro"},
	}
}

// NeedsSeed reports whether the document lacks the critical clubs list.
func (l SystemLists) NeedsSeed() bool {
	return len(l.Clubs) == 0
}

// Items returns a copy of the named list.
func (l *SystemLists) Items(name ListName) ([]string, error) {
	p, err := l.field(name)
	if err != nil {
		return nil, err
	}
	return append([]string{}, (*p)...), nil
}

// Add inserts item into the named list and keeps it sorted.
func (l *SystemLists) Add(name ListName, item string) ([]string, error) {
	p, err := l.field(name)
	if err != nil {
		return nil, err
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, domain.ErrValidation("item is required")
	}
	if slices.Contains(*p, item) {
		return nil, domain.ErrConflict(fmt.Sprintf("%s already contains %q", name, item))
	}
	updated := append(append([]string{}, (*p)...), item)
	slices.Sort(updated)
	*p = updated
	return append([]string{}, updated...), nil
}

// Remove deletes every occurrence of item from the named list.
func (l *SystemLists) Remove(name ListName, item string) ([]string, error) {
	p, err := l.field(name)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(*p, item) {
		return nil, domain.ErrNotFound(string(name)+" item", item)
	}
	updated := slices.DeleteFunc(append([]string{}, (*p)...), func(s string) bool { return s == item })
	*p = updated
	return append([]string{}, updated...), nil
}

func (l *SystemLists) field(name ListName) (*[]string, error) {
	switch name {
	case ListClubs:
		return &l.Clubs, nil
	case ListLeagues:
		return &l.Leagues, nil
	case ListAgents:
		return &l.Agents, nil
	case ListPositions:
		return &l.Positions, nil
	case ListBrands:
		return &l.Brands, nil
	case ListSelections:
		return &l.Selections, nil
	case ListFeet:
		return &l.Feet, nil
	}
	return nil, domain.ErrValidation(fmt.Sprintf("unknown list: %s", name))
}
