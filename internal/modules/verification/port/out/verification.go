package out

import (
	"context"

	"invsync/internal/modules/verification/domain"
)

type Source interface {
	// BranchForUser resolves the viewer's branch. ok is false when the user
	// has no operating assignment.
	BranchForUser(ctx context.Context, userID int64) (branchID int64, ok bool, err error)
	PendingByBranch(ctx context.Context, branchID int64) ([]domain.Entry, error)
}
