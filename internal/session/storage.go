package session

import (
	"context"
	"errors"
)

// Keys under which the session is persisted. Both are written and removed together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrCorrupt is returned by a Storage whose persisted data cannot be decoded.
// Deleting every key must still succeed on such storage.
var ErrCorrupt = errors.New("session storage corrupt")

// Storage is durable client storage for the session: a small string
// key/value store that survives process restarts.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
