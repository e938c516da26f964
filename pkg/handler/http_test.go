package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foomo/entitystore/pkg/employee"
	"github.com/foomo/entitystore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	l := zaptest.NewLogger(t)
	fs, err := store.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	s, err := store.NewSnapshotStore(t.Context(), l, employee.Key, store.NewHistory(l, fs))
	require.NoError(t, err)

	server := httptest.NewServer(NewHTTP(l, s, WithValidator[employee.Employee](employee.Employee.Validate)))
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, server *httptest.Server, route Route, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(server.URL+"/entitystore/"+string(route), "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.String()
}

func TestHTTPSaveAndGet(t *testing.T) {
	server := newTestServer(t)

	resp, body := post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time","monthlySalary":500000}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"key":"E1"`)

	resp, body = post(t, server, RouteGet, `{"key":"E1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"Alice"`)
}

func TestHTTPSaveDuplicate(t *testing.T) {
	server := newTestServer(t)

	resp, _ := post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Bob","kind":"full-time"}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "duplicate entity key")

	// the first entity must survive
	_, body = post(t, server, RouteGet, `{"key":"E1"}`)
	assert.Contains(t, body, `"name":"Alice"`)
}

func TestHTTPSaveInvalidEntity(t *testing.T) {
	server := newTestServer(t)

	resp, body := post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"freelancer"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown employee kind")

	resp, body = post(t, server, RouteSave, `{"entity":{"id":"E1","kind":"full-time"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "name must not be empty")

	// nothing may have reached the store
	_, body = post(t, server, RouteExists, `{"key":"E1"}`)
	assert.Contains(t, body, `"exists":false`)
}

func TestHTTPUpdateInvalidEntity(t *testing.T) {
	server := newTestServer(t)

	_, _ = post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time"}}`)

	resp, body := post(t, server, RouteUpdate, `{"entity":{"id":"E1","name":"","kind":"full-time"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "invalid entity")

	_, body = post(t, server, RouteGet, `{"key":"E1"}`)
	assert.Contains(t, body, `"name":"Alice"`)
}

func TestHTTPUpdateMissing(t *testing.T) {
	server := newTestServer(t)

	resp, body := post(t, server, RouteUpdate, `{"entity":{"id":"E1","name":"Bob","kind":"full-time"}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "entity not found")
}

func TestHTTPGetMissing(t *testing.T) {
	server := newTestServer(t)

	resp, _ := post(t, server, RouteGet, `{"key":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPDelete(t *testing.T) {
	server := newTestServer(t)

	resp, _ := post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"contractor"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := post(t, server, RouteDelete, `{"key":"E1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"found":true`)

	resp, body = post(t, server, RouteDelete, `{"key":"E1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `"found":true`)
}

func TestHTTPCountAndGetAll(t *testing.T) {
	server := newTestServer(t)

	resp, body := post(t, server, RouteCount, `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"count":0`)

	_, _ = post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time"}}`)
	_, _ = post(t, server, RouteSave, `{"entity":{"id":"E2","name":"Bob","kind":"part-time"}}`)

	_, body = post(t, server, RouteCount, `{}`)
	assert.Contains(t, body, `"count":2`)

	_, body = post(t, server, RouteGetAll, `{}`)
	assert.Contains(t, body, `"id":"E1"`)
	assert.Contains(t, body, `"id":"E2"`)
}

func TestHTTPExists(t *testing.T) {
	server := newTestServer(t)

	_, _ = post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time"}}`)

	_, body := post(t, server, RouteExists, `{"key":"E1"}`)
	assert.Contains(t, body, `"exists":true`)

	_, body = post(t, server, RouteExists, `{"key":"E2"}`)
	assert.Contains(t, body, `"exists":false`)
}

func TestHTTPStats(t *testing.T) {
	server := newTestServer(t)

	_, _ = post(t, server, RouteSave, `{"entity":{"id":"E1","name":"Alice","kind":"full-time"}}`)

	resp, body := post(t, server, RouteStats, `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"count":1`)
	assert.Contains(t, body, "entitystore-snapshot-")
}

func TestHTTPBadJSON(t *testing.T) {
	server := newTestServer(t)

	resp, _ := post(t, server, RouteSave, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPUnknownRoute(t *testing.T) {
	server := newTestServer(t)

	resp, body := post(t, server, Route("nope"), `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "unknown route")
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/entitystore/count")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
