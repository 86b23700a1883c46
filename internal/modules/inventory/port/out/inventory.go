package out

import (
	"context"

	"invsync/internal/modules/inventory/domain"
)

// API is the inventory backend. Errors carrying a server message are
// apperrors.ServerError values.
type API interface {
	Start(ctx context.Context, zoneID, operatingGroupID int64) (domain.StartResult, error)
	Finish(ctx context.Context, sessionID int64, observations string) error
	Cancel(ctx context.Context, sessionID int64) (string, error)
	MissingItems(ctx context.Context, sessionID int64) ([]domain.MissingItem, error)
	SubmitManualScans(ctx context.Context, sessionID int64, entries []domain.ManualScanEntry) error
	Operating(ctx context.Context, userID int64) (domain.Operating, error)
}

// DispositionPrompt asks the user for a final status per missing item.
// ok is false when the user declined or dismissed the prompt.
type DispositionPrompt interface {
	Resolve(ctx context.Context, items []domain.MissingItem) (dispositions []domain.Disposition, ok bool, err error)
}

// GroupMembership tracks the push group of the active session. A left
// group is no longer rejoined when the channel reconnects.
type GroupMembership interface {
	JoinSessionGroup(ctx context.Context, sessionID int64) error
	LeaveSessionGroup(sessionID int64)
}
