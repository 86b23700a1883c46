package out

import (
	"context"
	"encoding/json"
)

// HubConn is one live connection to the server hub. Handlers registered
// with On do not survive the connection; Done closes when it is lost.
// Nothing is delivered until Start, so records that arrive while handlers
// are being registered wait for them.
type HubConn interface {
	On(target string, handler func(payload json.RawMessage))
	Start()
	Invoke(ctx context.Context, method string, args ...any) error
	Done() <-chan struct{}
	Err() error
	Close() error
}

type HubTransport interface {
	Dial(ctx context.Context, token string) (HubConn, error)
}

// CredentialProvider yields the bearer token. An empty token means connect
// without a credential.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// InvocationError is a hub completion that carried an error message.
type InvocationError struct {
	Method  string
	Message string
}

func (e *InvocationError) Error() string {
	return e.Method + ": " + e.Message
}
