// Package store defines the durable key-value boundary behind the journal
// and its Redis, Postgres and in-memory implementations.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no value exists for the key
var ErrNotFound = errors.New("store: key not found")

// KV is the injected persistence capability. Values are opaque byte
// slices; the journal stores a JSON-serialized entry array per key.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
