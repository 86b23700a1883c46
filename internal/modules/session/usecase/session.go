package usecase

import (
	"context"

	"invsync/internal/modules/session/domain"
	sessiondto "invsync/internal/modules/session/dto"
	sessionin "invsync/internal/modules/session/port/in"
	"invsync/internal/modules/session/service"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Current(ctx context.Context) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Current(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return mapSession(session), nil
}

func (i *Interactor) Activate(ctx context.Context, sessionID int64) error {
	return i.svc.Activate(ctx, sessionID)
}

func (i *Interactor) RecordScan(ctx context.Context, input sessiondto.ScanInput) (bool, error) {
	return i.svc.RecordScan(ctx, input.SessionID, input.ItemID)
}

func (i *Interactor) SetObservation(ctx context.Context, observation string) error {
	return i.svc.SetObservation(ctx, observation)
}

func (i *Interactor) HasActive(ctx context.Context) (bool, error) {
	session, err := i.svc.Current(ctx)
	if err != nil {
		return false, err
	}
	return session.Active(), nil
}

func (i *Interactor) ScannedCount(ctx context.Context) (int, error) {
	session, err := i.svc.Current(ctx)
	if err != nil {
		return 0, err
	}
	return session.ScannedCount(), nil
}

func (i *Interactor) Clear(ctx context.Context) error {
	return i.svc.Clear(ctx)
}

func mapSession(session domain.Session) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		SessionID:      session.ID,
		Active:         session.Active(),
		ScannedItemIDs: session.ScannedIDs(),
		Observation:    session.Observation,
		UpdatedAt:      session.UpdatedAt,
	}
}
