package store

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateKey is returned by Save when the key is already stored.
	ErrDuplicateKey = errors.New("duplicate entity key")
	// ErrNotFound is returned by Update when the key is not stored.
	ErrNotFound = errors.New("entity not found")
	// ErrEmptyKey is returned when the derived entity key is empty.
	ErrEmptyKey = errors.New("entity key must not be empty")
)

// PersistenceError reports a failure of the backing storage. The operation it
// occurred in has been rolled back in memory, the store remains usable.
type PersistenceError struct {
	Op  string
	Err error
}

func newPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
