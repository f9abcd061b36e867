// Package store persists the client's collections as whole serialized
// values under fixed keys. Every write replaces the full value.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KV is a durable key/value store with whole-value granularity.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
