package out

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type StaticCredentials struct {
	token string
}

func NewStaticCredentials(token string) StaticCredentials {
	return StaticCredentials{token: strings.TrimSpace(token)}
}

func (s StaticCredentials) Token(context.Context) (string, error) {
	return s.token, nil
}

// FileCredentials re-reads the token file on every call so a refreshed
// token is picked up on reconnect.
type FileCredentials struct {
	path string
}

func NewFileCredentials(path string) FileCredentials {
	return FileCredentials{path: path}
}

func (f FileCredentials) Token(context.Context) (string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// AccessToken lets the same provider authenticate REST calls.
func (s StaticCredentials) AccessToken(ctx context.Context) (string, error) {
	return s.Token(ctx)
}

func (f FileCredentials) AccessToken(ctx context.Context) (string, error) {
	return f.Token(ctx)
}
