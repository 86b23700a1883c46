package in

import (
	"context"

	zonedto "invsync/internal/modules/zone/dto"
)

type Subscription interface {
	Unsubscribe()
}

// Usecase is the live zone list. Activate and Deactivate bracket the period
// during which pushed state changes are applied.
type Usecase interface {
	Load(ctx context.Context, userID int64) (zonedto.LoadOutput, error)
	Activate()
	Deactivate()
	Zones() []zonedto.ZoneOutput
	Filter(query zonedto.ZoneQuery) ([]zonedto.ZoneOutput, error)
	FirstBranchID() (int64, bool)
	OnChange(handler func([]zonedto.ZoneOutput)) Subscription
	DefaultFilters() []zonedto.FilterOutput
	ActivateFilter(filters []zonedto.FilterOutput, filterID int) []zonedto.FilterOutput
}
