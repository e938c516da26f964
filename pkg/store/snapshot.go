package store

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotVersion is written into every snapshot envelope and checked on
// load, so that format changes are detected and rejected instead of being
// silently misread.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written with an
// unsupported envelope version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// snapshotEnvelope is the persisted form of the full index.
type snapshotEnvelope[T any] struct {
	Version  int          `json:"version"`
	SavedAt  time.Time    `json:"savedAt"`
	Entities map[string]T `json:"entities"`
}

func encodeSnapshot[T any](index map[string]T) ([]byte, error) {
	data, err := json.Marshal(snapshotEnvelope[T]{
		Version:  SnapshotVersion,
		SavedAt:  time.Now().UTC(),
		Entities: index,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}
	return data, nil
}

func decodeSnapshot[T any](data []byte) (map[string]T, error) {
	var envelope snapshotEnvelope[T]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	if envelope.Version != SnapshotVersion {
		return nil, errors.Wrapf(ErrSnapshotVersion, "got %d, want %d", envelope.Version, SnapshotVersion)
	}
	if envelope.Entities == nil {
		envelope.Entities = map[string]T{}
	}
	return envelope.Entities, nil
}
