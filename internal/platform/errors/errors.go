package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
)

// ServerError carries a non-2xx response from the inventory API.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// ServerMessage returns the message the server attached to err, if any.
func ServerMessage(err error) (string, bool) {
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		return "", false
	}
	msg := strings.TrimSpace(serverErr.Message)
	return msg, msg != ""
}

// MessageOr prefers the server supplied message and falls back to fallback.
func MessageOr(err error, fallback string) string {
	if msg, ok := ServerMessage(err); ok {
		return msg
	}
	return fallback
}
