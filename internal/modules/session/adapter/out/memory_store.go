package out

import (
	"context"
	"sync/atomic"
	"time"

	"invsync/internal/modules/session/domain"
	sessionout "invsync/internal/modules/session/port/out"
)

// MemoryStore keeps the session in a single atomically swapped pointer.
type MemoryStore struct {
	current atomic.Pointer[domain.Session]
}

func NewMemoryStore() sessionout.Store {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (domain.Session, error) {
	if session := s.current.Load(); session != nil {
		return *session, nil
	}
	return domain.Session{}, nil
}

func (s *MemoryStore) Save(_ context.Context, session domain.Session) error {
	s.current.Store(&session)
	return nil
}

func (s *MemoryStore) AddScan(_ context.Context, sessionID, itemID int64, now time.Time) (bool, error) {
	for {
		old := s.current.Load()
		if old == nil {
			return false, domain.ErrSessionMismatch
		}
		next, changed, err := old.WithScan(sessionID, itemID, now)
		if err != nil || !changed {
			return false, err
		}
		if s.current.CompareAndSwap(old, &next) {
			return true, nil
		}
	}
}

func (s *MemoryStore) SetObservation(_ context.Context, sessionID int64, observation string, now time.Time) (bool, error) {
	for {
		old := s.current.Load()
		if old == nil || !old.Active() || old.ID != sessionID {
			return false, nil
		}
		next := old.WithObservation(observation, now)
		if s.current.CompareAndSwap(old, &next) {
			return true, nil
		}
	}
}

func (s *MemoryStore) Clear(context.Context) error {
	s.current.Store(nil)
	return nil
}
