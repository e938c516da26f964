// Package client provides a typed HTTP client for an entitystore server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/foomo/entitystore/pkg/handler"
	"github.com/foomo/entitystore/pkg/store"
	"github.com/foomo/entitystore/requests"
	"github.com/foomo/entitystore/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Client calls a remote entity store over HTTP. T must match the entity
	// type the server was started with.
	Client[T any] struct {
		endpoint   string
		httpClient *http.Client
	}
	Option[T any] func(*Client[T])
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New creates a client for the given endpoint, e.g.
// "http://localhost:8080/entitystore".
// Caution: the provided endpoint is not validated!
func New[T any](endpoint string, opts ...Option[T]) *Client[T] {
	inst := &Client[T]{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient[T any](v *http.Client) Option[T] {
	return func(o *Client[T]) {
		o.httpClient = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Save persists a new entity.
// Returns store.ErrDuplicateKey when the server rejects the key.
func (c *Client[T]) Save(ctx context.Context, entity T) error {
	raw, err := jsonCodec.Marshal(entity)
	if err != nil {
		return errors.Wrap(err, "failed to encode entity")
	}
	reply := &responses.Result{}
	return c.call(ctx, handler.RouteSave, &requests.Save{Entity: raw}, reply)
}

// Update replaces a stored entity.
// Returns store.ErrNotFound when the key is not stored.
func (c *Client[T]) Update(ctx context.Context, entity T) error {
	raw, err := jsonCodec.Marshal(entity)
	if err != nil {
		return errors.Wrap(err, "failed to encode entity")
	}
	reply := &responses.Result{}
	return c.call(ctx, handler.RouteUpdate, &requests.Update{Entity: raw}, reply)
}

// Get fetches one entity by key, reporting whether it was found.
func (c *Client[T]) Get(ctx context.Context, key string) (entity T, found bool, err error) {
	err = c.call(ctx, handler.RouteGet, &requests.Get{Key: key}, &entity)
	if errors.Is(err, store.ErrNotFound) {
		return entity, false, nil
	} else if err != nil {
		return entity, false, err
	}
	return entity, true, nil
}

// GetAll fetches all stored entities.
func (c *Client[T]) GetAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := c.call(ctx, handler.RouteGetAll, &requests.GetAll{}, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// Delete removes one entity by key and reports whether it was present.
func (c *Client[T]) Delete(ctx context.Context, key string) (bool, error) {
	reply := &responses.Result{}
	if err := c.call(ctx, handler.RouteDelete, &requests.Delete{Key: key}, reply); err != nil {
		return false, err
	}
	return reply.Found, nil
}

// Exists reports whether a key is stored.
func (c *Client[T]) Exists(ctx context.Context, key string) (bool, error) {
	reply := &responses.Exists{}
	if err := c.call(ctx, handler.RouteExists, &requests.Exists{Key: key}, reply); err != nil {
		return false, err
	}
	return reply.Exists, nil
}

// Count returns the number of stored entities.
func (c *Client[T]) Count(ctx context.Context) (int, error) {
	reply := &responses.Count{}
	if err := c.call(ctx, handler.RouteCount, &requests.Count{}, reply); err != nil {
		return 0, err
	}
	return reply.Count, nil
}

// Stats returns store statistics.
func (c *Client[T]) Stats(ctx context.Context) (*responses.Stats, error) {
	reply := &responses.Stats{}
	if err := c.call(ctx, handler.RouteStats, &requests.Stats{}, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (c *Client[T]) call(ctx context.Context, route handler.Route, request, response any) error {
	requestBytes, err := jsonCodec.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+string(route), bytes.NewBuffer(requestBytes))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to call entity store")
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	envelope := struct {
		Reply json.RawMessage `json:"reply"`
	}{}
	if err := jsonCodec.Unmarshal(responseBytes, &envelope); err != nil {
		return errors.Wrap(err, "failed to decode reply envelope")
	}

	if httpResponse.StatusCode != http.StatusOK {
		replyErr := &responses.Error{}
		if err := jsonCodec.Unmarshal(envelope.Reply, replyErr); err != nil {
			return errors.Errorf("non 200 reply: %s", httpResponse.Status)
		}
		return mapReplyError(replyErr)
	}

	return jsonCodec.Unmarshal(envelope.Reply, response)
}

// mapReplyError turns wire errors back into the store's sentinel errors, so
// callers can use errors.Is on both local and remote stores.
func mapReplyError(e *responses.Error) error {
	switch e.Code {
	case responses.CodeDuplicateKey:
		return store.ErrDuplicateKey
	case responses.CodeNotFound:
		return store.ErrNotFound
	default:
		return e
	}
}
