package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type StateZone int

const (
	StateAvailable StateZone = iota
	StateInInventory
	StateInVerification
)

func (s StateZone) String() string {
	switch s {
	case StateAvailable:
		return "Available"
	case StateInInventory:
		return "InInventory"
	case StateInVerification:
		return "InVerification"
	default:
		return fmt.Sprintf("StateZone(%d)", int(s))
	}
}

// ParseStateZone maps a pushed state name onto StateZone. Unknown names fall
// back to InVerification, the most restrictive state.
func ParseStateZone(name string) StateZone {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "available":
		return StateAvailable
	case "ininventory":
		return StateInInventory
	case "inverification":
		return StateInVerification
	default:
		return StateInVerification
	}
}

// UnmarshalJSON accepts the server's numeric enum or its name.
func (s *StateZone) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*s = ParseStateZone(name)
		return nil
	}
	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("state zone: %w", err)
	}
	if n < int(StateAvailable) || n > int(StateInVerification) {
		*s = StateInVerification
		return nil
	}
	*s = StateZone(n)
	return nil
}

func (s StateZone) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Zone is replaced as a whole on every update; fields are never patched in
// place.
type Zone struct {
	ID          int64
	Name        string
	BranchID    int64
	State       StateZone
	StateLabel  string
	IconName    string
	IsAvailable bool
}

type Update struct {
	ZoneID        int64
	NewState      StateZone
	NewStateLabel string
	NewIconName   string
	IsAvailable   bool
}

// ApplyZoneUpdate returns zones with the matching record replaced. An
// unknown id returns zones unchanged. The input slice is never modified.
func ApplyZoneUpdate(zones []Zone, update Update) []Zone {
	next, _ := ReplaceZone(zones, update)
	return next
}

// ReplaceZone is ApplyZoneUpdate that also reports whether anything changed.
func ReplaceZone(zones []Zone, update Update) ([]Zone, bool) {
	idx := -1
	for i, zone := range zones {
		if zone.ID == update.ZoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zones, false
	}
	current := zones[idx]
	replacement := Zone{
		ID:          current.ID,
		Name:        current.Name,
		BranchID:    current.BranchID,
		State:       update.NewState,
		StateLabel:  update.NewStateLabel,
		IconName:    update.NewIconName,
		IsAvailable: update.IsAvailable,
	}
	if replacement == current {
		return zones, false
	}
	next := make([]Zone, len(zones))
	copy(next, zones)
	next[idx] = replacement
	return next, true
}

func IsAccessible(zone Zone) bool {
	return zone.IsAvailable
}

// FirstBranchID is the branch of the first listed zone.
func FirstBranchID(zones []Zone) (int64, bool) {
	if len(zones) == 0 {
		return 0, false
	}
	return zones[0].BranchID, true
}

// FilterZones keeps zones whose name contains term (case-insensitive) and,
// when state is set, whose state matches.
func FilterZones(zones []Zone, term string, state *StateZone) []Zone {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]Zone, 0, len(zones))
	for _, zone := range zones {
		if needle != "" && !strings.Contains(strings.ToLower(zone.Name), needle) {
			continue
		}
		if state != nil && zone.State != *state {
			continue
		}
		out = append(out, zone)
	}
	return out
}
