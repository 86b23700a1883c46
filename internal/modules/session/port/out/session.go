package out

import (
	"context"
	"time"

	"invsync/internal/modules/session/domain"
)

// Store persists the one session record. Load returns the zero Session
// when nothing is stored.
//
// AddScan and SetObservation only touch the record when sessionID is still
// the stored session, so a writer working from a stale Load never brings a
// cleared session back. AddScan returns domain.ErrSessionMismatch when the
// stored session differs; SetObservation reports false.
type Store interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	AddScan(ctx context.Context, sessionID, itemID int64, now time.Time) (bool, error)
	SetObservation(ctx context.Context, sessionID int64, observation string, now time.Time) (bool, error)
	Clear(ctx context.Context) error
}
