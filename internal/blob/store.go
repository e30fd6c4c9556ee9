package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists under the given key.
var ErrNotFound = errors.New("blob not found")

// Store abstracts persistent key-value storage for task records.
// Implementations must be safe for concurrent use. There are no
// transactions: concurrent writers to the same key race and the last
// write wins.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the blob under key. Deleting a missing key is not an
	// error; the returned bool reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// List returns all keys beginning with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
