package domain

// Entry is one inventory waiting for verification. InventaryID is unique
// within a list.
type Entry struct {
	InventaryID int64
	Date        string
	ZoneID      int64
	ZoneName    string
	BranchID    int64
}

type UpdateKind string

const (
	Added   UpdateKind = "Added"
	Removed UpdateKind = "Removed"
)

type Update struct {
	Entry Entry
	Kind  UpdateKind
}

// ApplyListUpdate applies one pushed change to entries for the viewer bound
// to boundBranch. The input slice is never modified.
func ApplyListUpdate(entries []Entry, boundBranch int64, update Update) []Entry {
	next, _ := Reconcile(entries, boundBranch, update)
	return next
}

// Reconcile is ApplyListUpdate that also reports whether anything changed.
// Updates for another branch, or while no branch is bound, are dropped.
// Added prepends unless the id is already listed; Removed drops every entry
// with the id.
func Reconcile(entries []Entry, boundBranch int64, update Update) ([]Entry, bool) {
	if boundBranch == 0 || update.Entry.BranchID != boundBranch {
		return entries, false
	}
	switch update.Kind {
	case Added:
		if Contains(entries, update.Entry.InventaryID) {
			return entries, false
		}
		next := make([]Entry, 0, len(entries)+1)
		next = append(next, update.Entry)
		return append(next, entries...), true
	case Removed:
		if !Contains(entries, update.Entry.InventaryID) {
			return entries, false
		}
		next := make([]Entry, 0, len(entries))
		for _, entry := range entries {
			if entry.InventaryID != update.Entry.InventaryID {
				next = append(next, entry)
			}
		}
		return next, true
	default:
		return entries, false
	}
}

func Contains(entries []Entry, inventaryID int64) bool {
	for _, entry := range entries {
		if entry.InventaryID == inventaryID {
			return true
		}
	}
	return false
}

// ForBranch keeps the entries of branchID, filling in a missing branch and
// dropping repeated ids.
func ForBranch(entries []Entry, branchID int64) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := map[int64]struct{}{}
	for _, entry := range entries {
		if entry.BranchID == 0 {
			entry.BranchID = branchID
		}
		if entry.BranchID != branchID {
			continue
		}
		if _, dup := seen[entry.InventaryID]; dup {
			continue
		}
		seen[entry.InventaryID] = struct{}{}
		out = append(out, entry)
	}
	return out
}
