package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	snapshotKeyPrefix = "entitystore-snapshot-"
	snapshotKeySuffix = ".json"
	// CurrentSnapshotKey is the storage key holding the latest snapshot.
	CurrentSnapshotKey = snapshotKeyPrefix + "current" + snapshotKeySuffix
)

type (
	// History persists snapshots: every Add rewrites the current key and
	// keeps a limited number of timestamped backups for coarse recovery.
	History struct {
		l       *zap.Logger
		storage Storage
		limit   int
		mu      sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// HistoryWithLimit sets the number of backup snapshots to retain.
func HistoryWithLimit(v int) HistoryOption {
	return func(o *History) {
		o.limit = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, storage Storage, opts ...HistoryOption) *History {
	inst := &History{
		l:       l.Named("history"),
		storage: storage,
		limit:   2,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add writes the snapshot bytes to storage as both a timestamped backup and
// the current key, then drops backups beyond the retention limit.
// The outcome depends on the current-key write only: once that succeeded the
// snapshot is durable and a failed backup cleanup must not fail the mutation.
func (h *History) Add(ctx context.Context, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	backupKey := snapshotKeyPrefix + time.Now().UTC().Format(time.RFC3339Nano) + snapshotKeySuffix

	if err := h.storage.Write(ctx, backupKey, data); err != nil {
		return errors.Wrap(err, "failed to write backup snapshot")
	}

	h.l.Debug("writing snapshot",
		zap.String("backup", backupKey),
		zap.String("current", CurrentSnapshotKey),
	)

	if err := h.storage.Write(ctx, CurrentSnapshotKey, data); err != nil {
		return errors.Wrap(err, "failed to write current snapshot")
	}

	if err := h.cleanup(ctx); err != nil {
		h.l.Warn("could not clean up snapshot backups", zap.Error(err))
	}

	return nil
}

// GetCurrent reads the current snapshot.
// Returns os.ErrNotExist when no snapshot has been written yet.
func (h *History) GetCurrent(ctx context.Context) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.storage.Read(ctx, CurrentSnapshotKey)
}

// Revisions lists the retained backup snapshot keys, newest first.
func (h *History) Revisions(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.backups(ctx)
}

// Close releases resources held by the snapshot storage.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.storage != nil {
		return h.storage.Close()
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) backups(ctx context.Context) (keys []string, err error) {
	all, err := h.storage.List(ctx, snapshotKeyPrefix)
	if err != nil {
		return nil, err
	}

	for _, key := range all {
		if key != CurrentSnapshotKey && strings.HasSuffix(key, snapshotKeySuffix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (h *History) cleanup(ctx context.Context) error {
	keys, err := h.backups(ctx)
	if err != nil {
		return errors.Wrap(err, "could not list snapshot backups")
	}
	if len(keys) <= h.limit {
		return nil
	}

	var errs error
	for _, key := range keys[h.limit:] {
		h.l.Debug("removing outdated backup", zap.String("key", key))
		if err := h.storage.Delete(ctx, key); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "could not remove backup %s", key))
		}
	}
	return errs
}
