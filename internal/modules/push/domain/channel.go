package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConnection = errors.New("push channel connection failed")
	ErrNotReady   = errors.New("push channel is not connected")
	ErrJoin       = errors.New("join session group rejected")
	ErrClosed     = errors.New("push channel closed")
)

// JoinError carries the server's rejection reason for a group join.
type JoinError struct {
	SessionID int64
	Reason    string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("%s: session %d: %s", ErrJoin, e.SessionID, e.Reason)
}

func (e *JoinError) Unwrap() error {
	return ErrJoin
}

type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
	StateClosed       ConnState = "closed"
)

type Counters struct {
	DecodeErrors       int64
	ReconnectAttempts  int64
	ReconnectSuccesses int64
	EventsDelivered    int64
}

type Status struct {
	State       ConnState
	Groups      []int64
	LastEventAt time.Time
	ConnectedAt time.Time
	LastError   string
	Counters    Counters
}

// Backoff doubles from Initial up to Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (b Backoff) Next(current time.Duration) time.Duration {
	if current <= 0 {
		return b.Initial
	}
	next := current * 2
	if next > b.Max {
		return b.Max
	}
	return next
}
