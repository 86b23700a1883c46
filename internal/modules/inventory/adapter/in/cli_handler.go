package in

import (
	"context"
	"fmt"

	inventorydto "invsync/internal/modules/inventory/dto"
	inventoryin "invsync/internal/modules/inventory/port/in"
)

type CLIHandler struct {
	usecase inventoryin.Usecase
}

func NewCLIHandler(usecase inventoryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Start begins an inventory of zoneID. A zero operatingGroupID is resolved
// from the user's operating group.
func (h CLIHandler) Start(ctx context.Context, userID, zoneID, operatingGroupID int64) (inventorydto.StartOutput, error) {
	if operatingGroupID == 0 {
		operating, err := h.usecase.OperatingGroup(ctx, userID)
		if err != nil {
			return inventorydto.StartOutput{}, fmt.Errorf("resolve operating group: %w", err)
		}
		operatingGroupID = operating.OperatingGroupID
	}
	return h.usecase.Start(ctx, inventorydto.StartInput{ZoneID: zoneID, OperatingGroupID: operatingGroupID}), nil
}

func (h CLIHandler) Finish(ctx context.Context, input inventorydto.FinishInput) inventorydto.Result {
	return h.usecase.Finish(ctx, input)
}

func (h CLIHandler) Cancel(ctx context.Context) inventorydto.Result {
	return h.usecase.Cancel(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (inventorydto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Completion(ctx context.Context, categories []inventorydto.Category) (inventorydto.CompletionOutput, error) {
	return h.usecase.Completion(ctx, categories)
}
