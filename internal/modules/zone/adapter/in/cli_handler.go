package in

import (
	"context"

	zonedto "invsync/internal/modules/zone/dto"
	zonein "invsync/internal/modules/zone/port/in"
)

type CLIHandler struct {
	usecase zonein.Usecase
}

func NewCLIHandler(usecase zonein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// List loads the user's zones and narrows them by search text and the
// filter selected by filterID (zero keeps the default).
func (h CLIHandler) List(ctx context.Context, userID int64, search string, filterID int) ([]zonedto.ZoneOutput, string, error) {
	loaded, err := h.usecase.Load(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	filters := h.usecase.DefaultFilters()
	if filterID != 0 {
		filters = h.usecase.ActivateFilter(filters, filterID)
	}
	state := ""
	for _, f := range filters {
		if f.Active {
			state = f.State
		}
	}
	zones, err := h.usecase.Filter(zonedto.ZoneQuery{Search: search, State: state})
	if err != nil {
		return nil, "", err
	}
	return zones, loaded.Notice, nil
}

func (h CLIHandler) Filters() []zonedto.FilterOutput {
	return h.usecase.DefaultFilters()
}
