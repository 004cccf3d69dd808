package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound signals an absent key; callers that tolerate missing
// entries check for it explicitly.
var ErrKeyNotFound = errors.New("key not found")

// Store is the narrow key/value persistence capability every store component
// is built on. Values are wholesale JSON documents; there are no partial
// writes. Implementations are substituted with the in-memory fake in tests.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
