package in

import (
	"context"

	inventorydto "invsync/internal/modules/inventory/dto"
)

// Usecase drives one inventory session through start, finish and cancel.
// Transition failures come back as results, never as errors.
type Usecase interface {
	Start(ctx context.Context, input inventorydto.StartInput) inventorydto.StartOutput
	Finish(ctx context.Context, input inventorydto.FinishInput) inventorydto.Result
	Cancel(ctx context.Context) inventorydto.Result
	HasActive(ctx context.Context) (bool, error)
	ScannedCount(ctx context.Context) (int, error)
	Completion(ctx context.Context, categories []inventorydto.Category) (inventorydto.CompletionOutput, error)
	Status(ctx context.Context) (inventorydto.StatusOutput, error)
	OperatingGroup(ctx context.Context, userID int64) (inventorydto.OperatingOutput, error)
}
