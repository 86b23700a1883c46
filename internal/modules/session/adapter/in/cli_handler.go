package in

import (
	"context"

	sessiondto "invsync/internal/modules/session/dto"
	sessionin "invsync/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Current(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) SetObservation(ctx context.Context, observation string) error {
	return h.usecase.SetObservation(ctx, observation)
}
