package usecase

import (
	"context"

	"invsync/internal/modules/verification/domain"
	verificationdto "invsync/internal/modules/verification/dto"
	verificationin "invsync/internal/modules/verification/port/in"
	"invsync/internal/modules/verification/service"
)

type Interactor struct {
	svc *service.Reconciler
}

func NewInteractor(svc *service.Reconciler) verificationin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context, userID int64) (verificationdto.LoadOutput, error) {
	branchID, entries, err := i.svc.Load(ctx, userID)
	if err != nil {
		return verificationdto.LoadOutput{}, err
	}
	return verificationdto.LoadOutput{BranchID: branchID, Bound: branchID != 0, Entries: mapEntries(entries)}, nil
}

func (i *Interactor) Activate() {
	i.svc.Activate()
}

func (i *Interactor) Deactivate() {
	i.svc.Deactivate()
}

func (i *Interactor) Entries() []verificationdto.EntryOutput {
	return mapEntries(i.svc.Entries())
}

func (i *Interactor) BranchID() int64 {
	return i.svc.BranchID()
}

func (i *Interactor) OnChange(handler func([]verificationdto.EntryOutput)) verificationin.Subscription {
	return i.svc.OnChange(func(entries []domain.Entry) { handler(mapEntries(entries)) })
}

func mapEntries(entries []domain.Entry) []verificationdto.EntryOutput {
	out := make([]verificationdto.EntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, verificationdto.EntryOutput{
			InventaryID: e.InventaryID,
			Date:        e.Date,
			ZoneID:      e.ZoneID,
			ZoneName:    e.ZoneName,
			BranchID:    e.BranchID,
		})
	}
	return out
}
