package seam

import (
	"context"
	"time"
)

// OnDispatchFunc is called once the route is known, before any parameter
// is resolved.
type OnDispatchFunc func(ctx context.Context, key string)

// OnSuccessFunc is called after the response was built.
type OnSuccessFunc func(ctx context.Context, key string, duration time.Duration)

// OnFailureFunc is called for every failed request, including unknown
// routes (key is then the requested path).
type OnFailureFunc func(ctx context.Context, key string, err *Error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
}

// WithOnDispatch adds a hook called just before parameter resolution.
// Multiple hooks are called in order.
//
// Example:
//
//	seam.WithOnDispatch(func(ctx context.Context, key string) {
//	    slog.DebugContext(ctx, "dispatching", "route", key)
//	})
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(a *Api) {
		a.hooks.onDispatch = append(a.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after a request succeeds.
// Multiple hooks are called in order.
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(a *Api) {
		a.hooks.onSuccess = append(a.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a request fails.
// Multiple hooks are called in order.
//
// Example:
//
//	seam.WithOnFailure(func(ctx context.Context, key string, err *seam.Error, d time.Duration) {
//	    failures.WithLabelValues(key, strconv.Itoa(err.Code)).Inc()
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(a *Api) {
		a.hooks.onFailure = append(a.hooks.onFailure, fn)
	}
}

func (h *hooks) dispatch(ctx context.Context, key string) {
	for _, fn := range h.onDispatch {
		fn(ctx, key)
	}
}

func (h *hooks) success(ctx context.Context, key string, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, key, d)
	}
}

func (h *hooks) failure(ctx context.Context, key string, err *Error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, key, err, d)
	}
}
