package in

import (
	"context"

	sessiondto "invsync/internal/modules/session/dto"
)

// Usecase is the single-owner session state store.
type Usecase interface {
	Current(ctx context.Context) (sessiondto.SessionOutput, error)
	Activate(ctx context.Context, sessionID int64) error
	RecordScan(ctx context.Context, input sessiondto.ScanInput) (bool, error)
	SetObservation(ctx context.Context, observation string) error
	HasActive(ctx context.Context) (bool, error)
	ScannedCount(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
