// Package session issues and resolves opaque login tokens. The relay core
// never verifies credentials itself; it only maps an already-issued token
// back to a user ID.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned when a token is unknown, expired or revoked.
var ErrNoSession = errors.New("session: no such session")

// DefaultTTL is used when the configured TTL is zero.
const DefaultTTL = 24 * time.Hour

// Store holds active sessions. RedisStore is used in production; MemoryStore
// backs development and tests.
type Store interface {
	Create(ctx context.Context, userID int64) (token string, err error)
	Resolve(ctx context.Context, token string) (userID int64, err error)
	Revoke(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}
