package out

import (
	"context"

	"invsync/internal/modules/zone/domain"
)

// Source lists the zones assigned to a user. A user with no zones may be
// reported as apperrors.ErrNotFound.
type Source interface {
	ZonesByUser(ctx context.Context, userID int64) ([]domain.Zone, error)
}
