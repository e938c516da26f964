package store

import (
	"context"
)

// KeyFunc derives the identity key for an entity. It must be a pure,
// deterministic function of the entity's identity fields and must not change
// for a given logical entity across its lifetime.
type KeyFunc[T any] func(T) string

// Store is the storage contract for a collection of keyed entities,
// independent of the backing mechanism.
//
// Mutating operations persist durable state before returning. Read
// operations only touch the in-memory index and cause no I/O.
type Store[T any] interface {
	// Save persists a new entity.
	// Fails with ErrDuplicateKey if an entity with the same key is already
	// stored, with ErrEmptyKey if the key is empty and with a
	// *PersistenceError if the snapshot cannot be written.
	Save(ctx context.Context, entity T) error

	// Update replaces the stored entity with the same key.
	// Fails with ErrNotFound if the key is not present.
	Update(ctx context.Context, entity T) error

	// DeleteByID removes the entity with the given key and reports whether
	// it was present. A missing key is not an error.
	DeleteByID(ctx context.Context, key string) (bool, error)

	// FindByID returns the stored entity for the given key.
	FindByID(key string) (T, bool)

	// FindAll returns all stored entities. Order is not guaranteed.
	FindAll() []T

	// ExistsByID reports whether an entity with the given key is stored.
	ExistsByID(key string) bool

	// Count returns the number of stored entities.
	Count() int
}
