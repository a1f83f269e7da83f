package seam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Api holds the route table, shared state and configuration. It implements
// http.Handler. Routes are registered up front; the first call to Handle
// freezes the table.
type Api struct {
	basePath     string
	routes       []*route
	index        map[string]*route
	states       map[any]any
	logger       *slog.Logger
	hooks        hooks
	defaultLimit int64
	middleware   []Middleware
	infoPath     string
	tracer       SpanStarter

	mu     sync.Mutex
	frozen atomic.Bool
}

// Option configures an Api.
type Option func(*Api)

// WithBasePath strips prefix from request paths before route lookup.
func WithBasePath(prefix string) Option {
	return func(a *Api) {
		a.basePath = strings.TrimSuffix(prefix, "/")
	}
}

// WithLogger sets the logger used for failures and recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Api) {
		a.logger = l
	}
}

// WithDefaultBodyLimit caps request payloads of every route that sets no
// cap of its own.
func WithDefaultBodyLimit(n int64) Option {
	return func(a *Api) {
		a.defaultLimit = n
	}
}

// SpanStarter is a tracing hook interface for creating spans per request.
// Implement this with your preferred tracing backend (e.g., OpenTelemetry).
type SpanStarter interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func())
}

// WithTracer sets a tracing hook for the api.
func WithTracer(s SpanStarter) Option {
	return func(a *Api) {
		a.tracer = s
	}
}

// New creates an empty Api with the given options.
func New(opts ...Option) *Api {
	a := &Api{
		index:  make(map[string]*route),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Use adds middleware to ServeHTTP. Middleware is applied in the order added.
func (a *Api) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

func (a *Api) addRoute(r *route) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen.Load() {
		panic(fmt.Sprintf("seam: route %q registered after the api started serving", r.key))
	}
	if _, ok := a.index[r.key]; ok {
		panic(fmt.Sprintf("seam: duplicate route %q", r.key))
	}
	a.index[r.key] = r
	a.routes = append(a.routes, r)

	limit := int64(0)
	if r.handler.body != nil {
		limit = effectiveLimit(r.limit, r.handler.body.limit, a.defaultLimit)
	}
	a.logger.Debug("route registered",
		"route", r.key,
		"method", r.method,
		"params", len(r.handler.slots),
		"body_limit", limitString(limit),
	)
}

// freeze closes the route table. Registrations in flight finish first, and
// later ones panic, so the index can be read without the lock afterwards.
func (a *Api) freeze() {
	if a.frozen.Load() {
		return
	}
	a.mu.Lock()
	a.frozen.Store(true)
	a.mu.Unlock()
}

// lookup maps a request path to a route key.
func (a *Api) lookup(path string) (string, *route) {
	key := path
	if a.basePath != "" {
		rest, ok := strings.CutPrefix(path, a.basePath)
		if !ok || (rest != "" && rest[0] != '/') {
			return strings.TrimPrefix(path, "/"), nil
		}
		key = rest
	}
	key = strings.TrimPrefix(key, "/")
	return key, a.index[key]
}

// Handle runs one request through the pipeline. The returned error, if
// any, is an *Error.
func (a *Api) Handle(ctx context.Context, req *Request) (*Response, error) {
	a.freeze()
	start := time.Now()

	key, rt := a.lookup(req.Path)
	if a.tracer != nil {
		var end func()
		ctx, end = a.tracer.StartSpan(ctx, "seam.dispatch", map[string]string{
			"route":  key,
			"method": req.Method,
		})
		defer end()
	}

	resp, apiErr := a.dispatch(ctx, key, rt, req)
	if apiErr != nil {
		a.logFailure(ctx, key, req, apiErr)
		a.hooks.failure(ctx, key, apiErr, time.Since(start))
		return nil, apiErr
	}
	a.hooks.success(ctx, key, time.Since(start))
	return resp, nil
}

func (a *Api) dispatch(ctx context.Context, key string, rt *route, req *Request) (resp *Response, apiErr *Error) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.ErrorContext(ctx, "panic recovered",
				"panic", rec,
				"stack", string(debug.Stack()),
				"route", key,
			)
			resp = nil
			apiErr = ServerError(fmt.Sprintf("panic in route %q: %v", key, rec)).withKind(ErrInternal)
		}
	}()

	if rt == nil {
		return nil, NotFound().withInternal(fmt.Sprintf("no route %q", key)).withKind(ErrRouteNotFound)
	}
	if req.Method != rt.method {
		return nil, External(http.StatusMethodNotAllowed, "Method not allowed").
			withInternal(fmt.Sprintf("route %q expects %s, got %s", key, rt.method, req.Method)).
			withKind(ErrMethodNotAllowed)
	}

	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	req.shared = a.states
	a.hooks.dispatch(ctx, key)

	h := rt.handler
	args := make([]any, len(h.slots))
	for i, s := range h.slots {
		if err := ctx.Err(); err != nil {
			return nil, canceled(err)
		}

		var data []byte
		if s.body != nil {
			var err *Error
			if data, err = readBody(req, effectiveLimit(rt.limit, s.body.limit, a.defaultLimit)); err != nil {
				return nil, err
			}
		}

		v, err := s.fill(ctx, req, data)
		if err != nil {
			return nil, Translate(err).withKind(ErrParamResolution)
		}
		args[i] = v
	}

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	return h.invoke(ctx, args)
}

func canceled(err error) *Error {
	return Errorf(http.StatusServiceUnavailable, "request canceled: %v", err).
		WithExternalMessage("Request canceled").
		WithCause(err).
		withKind(ErrCanceled)
}

func (a *Api) logFailure(ctx context.Context, key string, req *Request, e *Error) {
	level := slog.LevelWarn
	if e.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.logger.LogAttrs(ctx, level, "request failed",
		slog.String("route", key),
		slog.String("method", req.Method),
		slog.Int("status", e.Code),
		slog.String("error", e.InternalMessage),
	)
}

// ServeHTTP implements http.Handler.
func (a *Api) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(http.HandlerFunc(a.serveHTTP))
	for i := len(a.middleware) - 1; i >= 0; i-- {
		handler = a.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

func (a *Api) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if a.infoPath != "" && r.URL.Path == a.infoPath && r.Method == http.MethodGet {
		a.serveInfo(w)
		return
	}

	resp, err := a.Handle(r.Context(), FromHTTP(r))
	if err != nil {
		resp = ErrorResponse(err)
		if errors.Is(err, ErrMethodNotAllowed) {
			if _, rt := a.lookup(r.URL.Path); rt != nil {
				resp.Header.Set("Allow", rt.method)
			}
		}
	}
	resp.WriteHTTP(w)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (a *Api) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
