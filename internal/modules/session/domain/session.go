package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidSessionID = errors.New("session id must be positive")
	ErrSessionMismatch  = errors.New("scan belongs to a different session")
)

// Session is the single active inventory session of this client. ID zero
// means no session is active. Values are immutable: every mutation returns
// a new Session so concurrent readers never observe a partial update.
type Session struct {
	ID          int64
	Scanned     map[int64]struct{}
	Observation string
	UpdatedAt   time.Time
}

func (s Session) Active() bool {
	return s.ID > 0
}

func (s Session) ScannedCount() int {
	return len(s.Scanned)
}

func (s Session) HasScanned(itemID int64) bool {
	_, ok := s.Scanned[itemID]
	return ok
}

// ScannedIDs returns the scanned item ids in ascending order.
func (s Session) ScannedIDs() []int64 {
	out := make([]int64, 0, len(s.Scanned))
	for id := range s.Scanned {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Start returns a fresh session with no scans.
func Start(id int64, now time.Time) (Session, error) {
	if id <= 0 {
		return Session{}, ErrInvalidSessionID
	}
	return Session{ID: id, Scanned: map[int64]struct{}{}, UpdatedAt: now}, nil
}

// WithScan adds itemID. A scan for another session, or with no session
// active, is refused so the scanned set stays empty while ID is absent.
func (s Session) WithScan(sessionID, itemID int64, now time.Time) (Session, bool, error) {
	if !s.Active() || (sessionID != 0 && sessionID != s.ID) {
		return s, false, ErrSessionMismatch
	}
	if s.HasScanned(itemID) {
		return s, false, nil
	}
	next := make(map[int64]struct{}, len(s.Scanned)+1)
	for id := range s.Scanned {
		next[id] = struct{}{}
	}
	next[itemID] = struct{}{}
	return Session{ID: s.ID, Scanned: next, Observation: s.Observation, UpdatedAt: now}, true, nil
}

func (s Session) WithObservation(observation string, now time.Time) Session {
	return Session{ID: s.ID, Scanned: s.Scanned, Observation: observation, UpdatedAt: now}
}
