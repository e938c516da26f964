package store

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/foomo/entitystore/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotStore implements Store with an in-memory index and whole-snapshot
// durability: every successful mutation rewrites the full snapshot through
// the history before returning.
//
// Mutations are serialized behind an exclusive lock, reads may run
// concurrently with each other but never interleave with a mutation. When a
// snapshot write fails the in-memory change is rolled back, so memory and
// durable state never diverge after a failed mutation.
type SnapshotStore[T any] struct {
	l       *zap.Logger
	keyOf   KeyFunc[T]
	history *History
	index   map[string]T
	mu      sync.RWMutex
}

var _ Store[any] = (*SnapshotStore[any])(nil)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewSnapshotStore restores the current snapshot before the store serves any
// request. A missing snapshot is the expected first-run state and yields an
// empty store. A snapshot that exists but cannot be decoded fails
// construction with a *PersistenceError: the caller must not proceed on a
// quietly emptied index.
func NewSnapshotStore[T any](ctx context.Context, l *zap.Logger, keyOf KeyFunc[T], history *History) (*SnapshotStore[T], error) {
	inst := &SnapshotStore[T]{
		l:       l.Named("store"),
		keyOf:   keyOf,
		history: history,
		index:   map[string]T{},
	}

	if err := inst.restore(ctx); err != nil {
		return nil, err
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (s *SnapshotStore[T]) Save(ctx context.Context, entity T) error {
	key := s.keyOf(entity)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[key]; ok {
		return errors.Wrapf(ErrDuplicateKey, "key %q", key)
	}

	s.index[key] = entity
	if err := s.persist(ctx, "save"); err != nil {
		delete(s.index, key)
		return err
	}

	s.l.Debug("saved entity", zap.String("key", key))
	return nil
}

func (s *SnapshotStore[T]) Update(ctx context.Context, entity T) error {
	key := s.keyOf(entity)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.index[key]
	if !ok {
		return errors.Wrapf(ErrNotFound, "key %q", key)
	}

	s.index[key] = entity
	if err := s.persist(ctx, "update"); err != nil {
		s.index[key] = previous
		return err
	}

	s.l.Debug("updated entity", zap.String("key", key))
	return nil
}

func (s *SnapshotStore[T]) DeleteByID(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.index[key]
	if !ok {
		return false, nil
	}

	delete(s.index, key)
	if err := s.persist(ctx, "delete"); err != nil {
		s.index[key] = previous
		return false, err
	}

	s.l.Debug("deleted entity", zap.String("key", key))
	return true, nil
}

func (s *SnapshotStore[T]) FindByID(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.index[key]
	return entity, ok
}

func (s *SnapshotStore[T]) FindAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entities := make([]T, 0, len(s.index))
	for _, entity := range s.index {
		entities = append(entities, entity)
	}
	return entities
}

func (s *SnapshotStore[T]) ExistsByID(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[key]
	return ok
}

func (s *SnapshotStore[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Key derives the store key for an entity.
func (s *SnapshotStore[T]) Key(entity T) string {
	return s.keyOf(entity)
}

// Revisions lists the retained backup snapshot keys, newest first.
func (s *SnapshotStore[T]) Revisions(ctx context.Context) ([]string, error) {
	return s.history.Revisions(ctx)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *SnapshotStore[T]) restore(ctx context.Context) error {
	data, err := s.history.GetCurrent(ctx)
	if errors.Is(err, os.ErrNotExist) {
		s.l.Info("no snapshot found, starting with an empty index")
		return nil
	} else if err != nil {
		return newPersistenceError("restore", err)
	}

	index, err := decodeSnapshot[T](data)
	if err != nil {
		metrics.SnapshotRestoreFailedCounter.WithLabelValues().Inc()
		return newPersistenceError("restore", err)
	}

	s.index = index
	s.l.Info("restored snapshot", zap.Int("entities", len(index)))
	return nil
}

// persist rewrites the full snapshot. Callers must hold the write lock.
func (s *SnapshotStore[T]) persist(ctx context.Context, op string) error {
	start := time.Now()

	data, err := encodeSnapshot(s.index)
	if err != nil {
		return newPersistenceError(op, err)
	}

	if err := s.history.Add(ctx, data); err != nil {
		metrics.SnapshotPersistFailedCounter.WithLabelValues().Inc()
		return newPersistenceError(op, err)
	}

	metrics.SnapshotPersistDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	metrics.StoredEntitiesGauge.WithLabelValues().Set(float64(len(s.index)))
	return nil
}
