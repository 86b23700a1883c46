package in

import (
	"context"

	verificationdto "invsync/internal/modules/verification/dto"
)

type Subscription interface {
	Unsubscribe()
}

type Usecase interface {
	Load(ctx context.Context, userID int64) (verificationdto.LoadOutput, error)
	Activate()
	Deactivate()
	Entries() []verificationdto.EntryOutput
	BranchID() int64
	OnChange(handler func([]verificationdto.EntryOutput)) Subscription
}
