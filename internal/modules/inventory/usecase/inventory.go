package usecase

import (
	"context"

	"invsync/internal/modules/inventory/domain"
	inventorydto "invsync/internal/modules/inventory/dto"
	inventoryin "invsync/internal/modules/inventory/port/in"
	"invsync/internal/modules/inventory/service"
	sessionin "invsync/internal/modules/session/port/in"
)

type Interactor struct {
	svc      *service.Facade
	sessions sessionin.Usecase
}

func NewInteractor(svc *service.Facade, sessions sessionin.Usecase) inventoryin.Usecase {
	return &Interactor{svc: svc, sessions: sessions}
}

func (i *Interactor) Start(ctx context.Context, input inventorydto.StartInput) inventorydto.StartOutput {
	started, err := i.svc.Start(ctx, input.ZoneID, input.OperatingGroupID)
	if err != nil {
		return inventorydto.StartOutput{Result: failure(err)}
	}
	out := inventorydto.StartOutput{
		Result:         inventorydto.Result{Success: true},
		SessionID:      started.Session.SessionID,
		InvitationCode: started.Session.InvitationCode,
	}
	if started.JoinErr != nil {
		out.JoinError = started.JoinErr.Error()
	}
	return out
}

func (i *Interactor) Finish(ctx context.Context, input inventorydto.FinishInput) inventorydto.Result {
	if err := i.svc.Finish(ctx, input.Observations); err != nil {
		return failure(err)
	}
	return inventorydto.Result{Success: true}
}

func (i *Interactor) Cancel(ctx context.Context) inventorydto.Result {
	if _, err := i.svc.Cancel(ctx); err != nil {
		return failure(err)
	}
	return inventorydto.Result{Success: true}
}

func (i *Interactor) HasActive(ctx context.Context) (bool, error) {
	return i.svc.HasActive(ctx)
}

func (i *Interactor) ScannedCount(ctx context.Context) (int, error) {
	return i.svc.ScannedCount(ctx)
}

func (i *Interactor) Completion(ctx context.Context, categories []inventorydto.Category) (inventorydto.CompletionOutput, error) {
	mapped := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		mapped = append(mapped, domain.Category{ID: c.ID, Name: c.Name, Count: c.Count})
	}
	completion, err := i.svc.Completion(ctx, mapped)
	if err != nil {
		return inventorydto.CompletionOutput{}, err
	}
	return inventorydto.CompletionOutput{
		IsComplete: completion.IsComplete,
		Expected:   completion.Expected,
		Scanned:    completion.Scanned,
		Missing:    completion.Missing,
	}, nil
}

func (i *Interactor) Status(ctx context.Context) (inventorydto.StatusOutput, error) {
	state, err := i.svc.State(ctx)
	if err != nil {
		return inventorydto.StatusOutput{}, err
	}
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return inventorydto.StatusOutput{}, err
	}
	scanned := current.ScannedItemIDs
	if scanned == nil {
		scanned = []int64{}
	}
	return inventorydto.StatusOutput{
		State:          string(state),
		SessionID:      current.SessionID,
		Active:         current.Active,
		ScannedCount:   len(scanned),
		ScannedItemIDs: scanned,
		Observation:    current.Observation,
	}, nil
}

func (i *Interactor) OperatingGroup(ctx context.Context, userID int64) (inventorydto.OperatingOutput, error) {
	operating, err := i.svc.OperatingGroup(ctx, userID)
	if err != nil {
		return inventorydto.OperatingOutput{}, err
	}
	return inventorydto.OperatingOutput{OperatingGroupID: operating.OperatingGroupID, BranchID: operating.BranchID}, nil
}

func failure(err error) inventorydto.Result {
	return inventorydto.Result{Success: false, Error: domain.UserMessage(err)}
}
