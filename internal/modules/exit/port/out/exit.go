package out

import "context"

// Confirmer is the user facing side of an exit attempt. Errors and
// dismissals count as a decline.
type Confirmer interface {
	ConfirmExit(ctx context.Context) (bool, error)
	ConfirmCancelActive(ctx context.Context) (bool, error)
	ShowError(ctx context.Context, message string)
}
