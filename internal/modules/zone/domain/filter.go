package domain

type FilterState struct {
	ID     int
	Name   string
	State  *StateZone
	Icon   string
	Active bool
}

const AllFilterID = 1

// DefaultFilters builds a fresh copy of the filter template with "Todos"
// active.
func DefaultFilters() []FilterState {
	available, inInventory, inVerification := StateAvailable, StateInInventory, StateInVerification
	return []FilterState{
		{ID: AllFilterID, Name: "Todos", Icon: "apps-outline", Active: true},
		{ID: 2, Name: "Disponible", State: &available, Icon: "lock-open-outline"},
		{ID: 3, Name: "En Inventario", State: &inInventory, Icon: "lock-close-outline"},
		{ID: 4, Name: "En Verificación", State: &inVerification, Icon: "shield-checkmark-outline"},
	}
}

func ResetFilters() []FilterState {
	return DefaultFilters()
}

// ActivateFilter marks filterID as the only active filter. An unknown id
// leaves the selection as it was.
func ActivateFilter(filters []FilterState, filterID int) []FilterState {
	found := false
	for _, f := range filters {
		if f.ID == filterID {
			found = true
			break
		}
	}
	out := make([]FilterState, len(filters))
	for i, f := range filters {
		if found {
			f.Active = f.ID == filterID
		}
		out[i] = f
	}
	return out
}

// ActiveFilterState is the state selected by the active filter, nil for
// "all".
func ActiveFilterState(filters []FilterState) *StateZone {
	for _, f := range filters {
		if f.Active {
			return f.State
		}
	}
	return nil
}
