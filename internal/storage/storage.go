package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small key-value store holding JSON documents under fixed keys.
// It plays the role of the browser's persistent storage for the tracker process:
// the analytics log, the active language and the favorites each own one key.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
