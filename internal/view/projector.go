// Package view derives the display list from the record collection and the
// current search, filter and sort settings.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tphummel/equipment_tracker/internal/models"
)

// SortKey is the field the display list is ordered by.
type SortKey string

const (
	SortByName        SortKey = SortKey(models.FieldName)
	SortByType        SortKey = SortKey(models.FieldType)
	SortByStatus      SortKey = SortKey(models.FieldStatus)
	SortByLastCleaned SortKey = SortKey(models.FieldLastCleaned)
)

// SortKeys lists the valid sort keys.
var SortKeys = []SortKey{SortByName, SortByType, SortByStatus, SortByLastCleaned}

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey returns the sort key named s.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q: must be one of %v", s, SortKeys)
}

// ParseDirection returns the direction named s.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
}

// State is the search, filter and sort state of the display list.
type State struct {
	Search string
	// TypeFilter keeps only records of this type. Empty means any type.
	TypeFilter models.Type
	SortKey    SortKey
	Direction  Direction
}

// DefaultState sorts by name, ascending, with no search or filter.
func DefaultState() State {
	return State{SortKey: SortByName, Direction: Ascending}
}

// ToggleSort selects key. Selecting the active key flips the direction;
// selecting a different key resets it to ascending.
func (s State) ToggleSort(key SortKey) State {
	if s.SortKey == key {
		if s.Direction == Descending {
			s.Direction = Ascending
		} else {
			s.Direction = Descending
		}
		return s
	}
	s.SortKey = key
	s.Direction = Ascending
	return s
}

// Project returns the records that match state, ordered by its sort key.
// Records with equal keys keep their input order. records is not modified.
func Project(records []models.Equipment, state State) []models.Equipment {
	fold := cases.Fold()
	needle := fold.String(state.Search)

	out := make([]models.Equipment, 0, len(records))
	for _, rec := range records {
		if needle != "" && !strings.Contains(fold.String(rec.Name), needle) {
			continue
		}
		if state.TypeFilter != "" && rec.Type != state.TypeFilter {
			continue
		}
		out = append(out, rec)
	}

	key := state.SortKey
	if key == "" {
		key = SortByName
	}
	desc := state.Direction == Descending
	slices.SortStableFunc(out, func(a, b models.Equipment) int {
		c := strings.Compare(a.Get(models.Field(key)), b.Get(models.Field(key)))
		if desc {
			return -c
		}
		return c
	})
	return out
}
