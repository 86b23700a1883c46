package in

import "context"

type Usecase interface {
	// HandleExitAttempt reports whether the caller may leave.
	HandleExitAttempt(ctx context.Context) bool
}
