package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"invsync/internal/modules/session/domain"
	sessionout "invsync/internal/modules/session/port/out"
	"invsync/internal/platform/clock"
	apperrors "invsync/internal/platform/errors"
)

// SessionService owns every write to the session store. Writes are
// serialized; reads go straight to the store, which hands out immutable
// records.
type SessionService struct {
	clock  clock.Clock
	store  sessionout.Store
	logger zerolog.Logger

	mu sync.Mutex
}

func NewSessionService(clock clock.Clock, store sessionout.Store, logger zerolog.Logger) *SessionService {
	return &SessionService{clock: clock, store: store, logger: logger}
}

func (s *SessionService) Current(ctx context.Context) (domain.Session, error) {
	return s.store.Load(ctx)
}

func (s *SessionService) Activate(ctx context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if current.Active() && current.ID != sessionID {
		return apperrors.ErrActiveSessionExists
	}
	if current.ID == sessionID {
		return nil
	}
	session, err := domain.Start(sessionID, s.clock.Now())
	if err != nil {
		return err
	}
	return s.store.Save(ctx, session)
}

// RecordScan adds a pushed scan to the active session. It reports whether
// the scanned set changed; scans for other sessions are dropped. The store
// only writes while the session is still current, so a scan racing a
// cancel in another process cannot revive it.
func (s *SessionService) RecordScan(ctx context.Context, sessionID, itemID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := sessionID
	if target == 0 {
		current, err := s.store.Load(ctx)
		if err != nil {
			return false, err
		}
		target = current.ID
	}
	changed, err := s.store.AddScan(ctx, target, itemID, s.clock.Now())
	if errors.Is(err, domain.ErrSessionMismatch) {
		s.logger.Debug().Int64("session_id", sessionID).Int64("item_id", itemID).Msg("scan ignored")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (s *SessionService) SetObservation(ctx context.Context, observation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !current.Active() {
		return apperrors.ErrNoActiveSession
	}
	updated, err := s.store.SetObservation(ctx, current.ID, strings.TrimSpace(observation), s.clock.Now())
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.ErrNoActiveSession
	}
	return nil
}

func (s *SessionService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear(ctx)
}
