package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHistory(t *testing.T, opts ...HistoryOption) *History {
	t.Helper()
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	return NewHistory(zaptest.NewLogger(t), fs, opts...)
}

func TestHistory_GetCurrent_NoSnapshot(t *testing.T) {
	h := newTestHistory(t)

	_, err := h.GetCurrent(t.Context())
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestHistory_AddAndGetCurrent(t *testing.T) {
	h := newTestHistory(t)

	require.NoError(t, h.Add(t.Context(), []byte("snapshot-1")))

	data, err := h.GetCurrent(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-1"), data)

	require.NoError(t, h.Add(t.Context(), []byte("snapshot-2")))

	data, err = h.GetCurrent(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-2"), data)
}

func TestHistory_Revisions(t *testing.T) {
	h := newTestHistory(t, HistoryWithLimit(5))

	require.NoError(t, h.Add(t.Context(), []byte("snapshot-1")))
	require.NoError(t, h.Add(t.Context(), []byte("snapshot-2")))

	revisions, err := h.Revisions(t.Context())
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	for _, key := range revisions {
		assert.NotEqual(t, CurrentSnapshotKey, key)
	}
	// newest first
	assert.Greater(t, revisions[0], revisions[1])
}

func TestHistory_CleanupKeepsLimit(t *testing.T) {
	h := newTestHistory(t, HistoryWithLimit(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Add(t.Context(), []byte{byte(i)}))
	}

	revisions, err := h.Revisions(t.Context())
	require.NoError(t, err)
	assert.Len(t, revisions, 2)

	// the current snapshot always survives cleanup
	data, err := h.GetCurrent(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
}

func TestHistory_Close(t *testing.T) {
	h := newTestHistory(t)
	require.NoError(t, h.Close())
}
