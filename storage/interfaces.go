package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a KeyValueStore when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// KeyValueStore is the interface any persistence backend must satisfy.
// Values are opaque JSON documents.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
