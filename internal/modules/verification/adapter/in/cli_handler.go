package in

import (
	"context"

	verificationdto "invsync/internal/modules/verification/dto"
	verificationin "invsync/internal/modules/verification/port/in"
)

type CLIHandler struct {
	usecase verificationin.Usecase
}

func NewCLIHandler(usecase verificationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// List loads the pending verifications of the user's branch.
func (h CLIHandler) List(ctx context.Context, userID int64) (verificationdto.LoadOutput, error) {
	return h.usecase.Load(ctx, userID)
}
