package store

import (
	"context"
)

// Storage defines the contract for snapshot persistence backends.
// Implementations must be safe for concurrent use.
//
// A backing location (directory, bucket prefix) must be owned by exactly one
// store instance. Concurrent writers against the same location are not
// supported, there is no cross-process locking protocol.
type Storage interface {
	// Write stores data under the given key.
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves the data stored under the given key.
	// Returns os.ErrNotExist if the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns keys matching the given prefix, sorted alphabetically
	// descending (newest first for timestamped keys).
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data stored under the given key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the storage backend.
	Close() error
}
