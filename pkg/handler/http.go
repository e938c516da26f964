package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foomo/entitystore/pkg/metrics"
	"github.com/foomo/entitystore/pkg/store"
	"github.com/foomo/entitystore/requests"
	"github.com/foomo/entitystore/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	HTTP[T any] struct {
		l        *zap.Logger
		basePath string
		store    *store.SnapshotStore[T]
		validate func(T) error
	}
	HTTPOption[T any] func(*HTTP[T])
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns a web server exposing the store operations.
//
// All routes are POST with a JSON body below the base path, e.g.
// POST /entitystore/save. Replies are wrapped as {"reply": <data>}.
func NewHTTP[T any](l *zap.Logger, s *store.SnapshotStore[T], opts ...HTTPOption[T]) http.Handler {
	inst := &HTTP[T]{
		l:        l.Named("http"),
		basePath: "/entitystore",
		store:    s,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath[T any](v string) HTTPOption[T] {
	return func(o *HTTP[T]) {
		o.basePath = v
	}
}

// WithValidator rejects invalid entities on save and update with a bad
// request reply before they reach the store.
func WithValidator[T any](v func(T) error) HTTPOption[T] {
	return func(o *HTTP[T]) {
		o.validate = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}

	var (
		l     = h.l.With(zap.String("run_id", uuid.New().String()))
		route = Route(strings.TrimPrefix(r.URL.Path, h.basePath+"/"))
	)

	reply, status := h.handleRequest(r.Context(), l, route, body)

	data, err := h.encodeReply(reply)
	if err != nil {
		http.Error(w, "could not encode reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP[T]) handleRequest(ctx context.Context, l *zap.Logger, route Route, body []byte) (any, int) {
	start := time.Now()

	reply, status := h.executeRequest(ctx, l, route, body)
	result := "success"
	if status >= http.StatusBadRequest {
		result = "error"
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result, "http").Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result, "http").Observe(time.Since(start).Seconds())

	return reply, status
}

func (h *HTTP[T]) executeRequest(ctx context.Context, l *zap.Logger, route Route, body []byte) (any, int) {
	switch route {
	case RouteSave:
		req := &requests.Save{}
		if err := json.Unmarshal(body, req); err != nil {
			return h.badRequestReply(l, err)
		}
		entity, errReply, status := h.decodeEntity(l, req.Entity)
		if errReply != nil {
			return errReply, status
		}
		if err := h.store.Save(ctx, entity); err != nil {
			return h.errorReply(l, err)
		}
		return &responses.Result{Success: true, Key: h.store.Key(entity)}, http.StatusOK

	case RouteUpdate:
		req := &requests.Update{}
		if err := json.Unmarshal(body, req); err != nil {
			return h.badRequestReply(l, err)
		}
		entity, errReply, status := h.decodeEntity(l, req.Entity)
		if errReply != nil {
			return errReply, status
		}
		if err := h.store.Update(ctx, entity); err != nil {
			return h.errorReply(l, err)
		}
		return &responses.Result{Success: true, Key: h.store.Key(entity)}, http.StatusOK

	case RouteGet:
		req := &requests.Get{}
		if err := json.Unmarshal(body, req); err != nil {
			return h.badRequestReply(l, err)
		}
		entity, ok := h.store.FindByID(req.Key)
		if !ok {
			return responses.NewError(http.StatusNotFound, responses.CodeNotFound, "entity not found: "+req.Key), http.StatusNotFound
		}
		return entity, http.StatusOK

	case RouteGetAll:
		return h.store.FindAll(), http.StatusOK

	case RouteDelete:
		req := &requests.Delete{}
		if err := json.Unmarshal(body, req); err != nil {
			return h.badRequestReply(l, err)
		}
		found, err := h.store.DeleteByID(ctx, req.Key)
		if err != nil {
			return h.errorReply(l, err)
		}
		return &responses.Result{Success: true, Key: req.Key, Found: found}, http.StatusOK

	case RouteExists:
		req := &requests.Exists{}
		if err := json.Unmarshal(body, req); err != nil {
			return h.badRequestReply(l, err)
		}
		return &responses.Exists{Exists: h.store.ExistsByID(req.Key)}, http.StatusOK

	case RouteCount:
		return &responses.Count{Count: h.store.Count()}, http.StatusOK

	case RouteStats:
		revisions, err := h.store.Revisions(ctx)
		if err != nil {
			return h.errorReply(l, err)
		}
		return &responses.Stats{Count: h.store.Count(), Revisions: revisions}, http.StatusOK

	default:
		return responses.NewError(http.StatusNotFound, responses.CodeUnknownRoute, "unknown route: "+string(route)), http.StatusNotFound
	}
}

// decodeEntity unmarshals the wrapped entity of a save or update request.
func (h *HTTP[T]) decodeEntity(l *zap.Logger, raw []byte) (entity T, errReply *responses.Error, status int) {
	if len(raw) == 0 {
		errReply, status = h.badRequestReply(l, errors.New("missing entity"))
		return
	}
	if err := json.Unmarshal(raw, &entity); err != nil {
		errReply, status = h.badRequestReply(l, err)
		return
	}
	if h.validate != nil {
		if err := h.validate(entity); err != nil {
			l.Info("rejecting invalid entity", zap.Error(err))
			errReply = responses.NewError(http.StatusBadRequest, responses.CodeBadRequest, "invalid entity: "+err.Error())
			return entity, errReply, http.StatusBadRequest
		}
	}
	return entity, nil, http.StatusOK
}

func (h *HTTP[T]) badRequestReply(l *zap.Logger, err error) (*responses.Error, int) {
	l.Error("could not read incoming json", zap.Error(err))
	return responses.NewError(http.StatusBadRequest, responses.CodeBadRequest, "could not read incoming json: "+err.Error()), http.StatusBadRequest
}

// errorReply maps store errors onto wire errors: client-correctable
// conditions keep their own status, persistence failures are a distinct
// server-side failure.
func (h *HTTP[T]) errorReply(l *zap.Logger, err error) (*responses.Error, int) {
	var persistenceErr *store.PersistenceError
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return responses.NewError(http.StatusConflict, responses.CodeDuplicateKey, err.Error()), http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return responses.NewError(http.StatusNotFound, responses.CodeNotFound, err.Error()), http.StatusNotFound
	case errors.Is(err, store.ErrEmptyKey):
		return responses.NewError(http.StatusBadRequest, responses.CodeBadRequest, err.Error()), http.StatusBadRequest
	case errors.As(err, &persistenceErr):
		l.Error("persistence failure", zap.Error(err))
		return responses.NewError(http.StatusServiceUnavailable, responses.CodePersistence, err.Error()), http.StatusServiceUnavailable
	default:
		l.Error("an API error occurred", zap.Error(err))
		return responses.NewError(http.StatusInternalServerError, responses.CodeInternal, err.Error()), http.StatusInternalServerError
	}
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (h *HTTP[T]) encodeReply(reply any) ([]byte, error) {
	data, err := json.Marshal(map[string]any{
		"reply": reply,
	})
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
	}
	return data, err
}
