// Package session maps opaque session tokens to authenticated user ids.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrDirectoryClosed is returned by a directory used after Close.
var ErrDirectoryClosed = errors.New("session directory closed")

// ErrEmptyToken is returned when binding a blank token.
var ErrEmptyToken = errors.New("session token is empty")

// Directory is the process-wide token -> user id store. Implementations must be safe
// for concurrent use.
type Directory interface {
	Bind(ctx context.Context, token string, userID uint) error
	Resolve(ctx context.Context, token string) (uint, bool, error)
	Revoke(ctx context.Context, token string) error
	Close() error
}

// NewToken returns a fresh opaque session token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
