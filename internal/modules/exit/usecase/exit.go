package usecase

import (
	"context"

	exitin "invsync/internal/modules/exit/port/in"
	"invsync/internal/modules/exit/service"
)

type Interactor struct {
	svc *service.Policy
}

func NewInteractor(svc *service.Policy) exitin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) HandleExitAttempt(ctx context.Context) bool {
	return i.svc.HandleExitAttempt(ctx)
}
