// ABOUTME: Backend interface for durable key-value transcript storage
// ABOUTME: Implementations store opaque text values keyed by conversation key

package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when a key has no stored value.
var ErrNotFound = errors.New("not found")

// ErrCorrupt marks a stored value that could not be decoded into a transcript.
var ErrCorrupt = errors.New("corrupt transcript")

// Backend is the durable storage boundary. Values are text-serializable bytes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the backend
	Close() error
}
