package domain

import "time"

// Tombstones remembers ids removed before they were ever listed, so a late
// Added for the same id does not resurrect the entry.
type Tombstones struct {
	ttl     time.Duration
	expires map[int64]time.Time
}

func NewTombstones(ttl time.Duration) *Tombstones {
	return &Tombstones{ttl: ttl, expires: map[int64]time.Time{}}
}

func (t *Tombstones) Mark(inventaryID int64, now time.Time) {
	if t.ttl <= 0 {
		return
	}
	t.expires[inventaryID] = now.Add(t.ttl)
}

// Consume reports whether inventaryID has a live tombstone and removes it.
func (t *Tombstones) Consume(inventaryID int64, now time.Time) bool {
	expiry, ok := t.expires[inventaryID]
	if !ok {
		return false
	}
	delete(t.expires, inventaryID)
	return now.Before(expiry)
}

func (t *Tombstones) Prune(now time.Time) {
	for id, expiry := range t.expires {
		if !now.Before(expiry) {
			delete(t.expires, id)
		}
	}
}

func (t *Tombstones) Reset() {
	clear(t.expires)
}

func (t *Tombstones) Len() int {
	return len(t.expires)
}
