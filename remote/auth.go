package remote

import (
	"context"
	"errors"
)

// ErrNotAuthenticated means no valid bearer credential is available.
// It is fatal for the whole sync invocation and is never retried.
var ErrNotAuthenticated = errors.New("not authenticated")

// TokenProvider supplies the bearer credential for each request. The
// session provider lives outside this engine; an empty or failing
// provider maps to ErrNotAuthenticated.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider backed by a fixed credential.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNotAuthenticated
	}
	return string(s), nil
}

// TokenFunc adapts a function to the TokenProvider interface.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }
