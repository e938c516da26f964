package client

import (
	"net/http/httptest"
	"testing"

	"github.com/foomo/entitystore/pkg/employee"
	"github.com/foomo/entitystore/pkg/handler"
	"github.com/foomo/entitystore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T) *Client[employee.Employee] {
	t.Helper()
	l := zaptest.NewLogger(t)
	fs, err := store.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	s, err := store.NewSnapshotStore(t.Context(), l, employee.Key, store.NewHistory(l, fs))
	require.NoError(t, err)

	server := httptest.NewServer(handler.NewHTTP(l, s))
	t.Cleanup(server.Close)
	return New[employee.Employee](server.URL + "/entitystore")
}

func TestClientSaveGet(t *testing.T) {
	c := newTestClient(t)

	err := c.Save(t.Context(), employee.Employee{ID: "E1", Name: "Alice", Kind: employee.KindFullTime, MonthlySalary: 500000})
	require.NoError(t, err)

	got, found, err := c.Get(t.Context(), "E1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, employee.KindFullTime, got.Kind)
}

func TestClientSaveDuplicate(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Save(t.Context(), employee.Employee{ID: "E1", Name: "Alice", Kind: employee.KindFullTime}))

	err := c.Save(t.Context(), employee.Employee{ID: "E1", Name: "Bob", Kind: employee.KindFullTime})
	require.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestClientUpdateMissing(t *testing.T) {
	c := newTestClient(t)

	err := c.Update(t.Context(), employee.Employee{ID: "E1", Name: "Bob", Kind: employee.KindFullTime})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientGetMissing(t *testing.T) {
	c := newTestClient(t)

	_, found, err := c.Get(t.Context(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientDeleteExistsCount(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Save(t.Context(), employee.Employee{ID: "E1", Name: "Alice", Kind: employee.KindContractor, ContractAmount: 100}))
	require.NoError(t, c.Save(t.Context(), employee.Employee{ID: "E2", Name: "Bob", Kind: employee.KindPartTime, HourlyRate: 10, HoursWorked: 5}))

	exists, err := c.Exists(t.Context(), "E1")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := c.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := c.Delete(t.Context(), "E1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = c.Delete(t.Context(), "E1")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := c.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "E2", all[0].ID)
}

func TestClientStats(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Save(t.Context(), employee.Employee{ID: "E1", Name: "Alice", Kind: employee.KindFullTime}))

	stats, err := c.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.NotEmpty(t, stats.Revisions)
}
