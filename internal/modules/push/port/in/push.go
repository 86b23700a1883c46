package in

import (
	"context"

	pushdto "invsync/internal/modules/push/dto"
)

type Subscription interface {
	Unsubscribe()
}

// Usecase is the auto-reconnecting hub channel. Each event kind is its own
// ordered topic.
type Usecase interface {
	Connect(ctx context.Context) error
	EnsureConnected(ctx context.Context) error
	JoinSessionGroup(ctx context.Context, sessionID int64) error
	LeaveSessionGroup(sessionID int64)
	Close() error
	Status() pushdto.StatusOutput
	SubscribeItemScanned(handler func(pushdto.ItemScanned)) Subscription
	SubscribeZoneState(handler func(pushdto.ZoneStateChanged)) Subscription
	SubscribeVerificationList(handler func(pushdto.VerificationListChanged)) Subscription
}
