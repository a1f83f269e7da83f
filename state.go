package seam

import (
	"context"
	"fmt"
	"reflect"
)

type stateKey[T any] struct{}

// Provide registers v as API-wide state, retrievable with State[T] or Lookup.
func Provide[T any](v T) Option {
	return func(a *Api) {
		if a.states == nil {
			a.states = make(map[any]any)
		}
		a.states[stateKey[T]{}] = v
	}
}

// Inject attaches per-request state to req. Request state shadows API state
// of the same type.
func Inject[T any](req *Request, v T) *Request {
	if req.states == nil {
		req.states = make(map[any]any)
	}
	req.states[stateKey[T]{}] = v
	return req
}

// Lookup returns the state of type T visible to req.
func Lookup[T any](req *Request) (T, bool) {
	if v, ok := req.states[stateKey[T]{}].(T); ok {
		return v, true
	}
	v, ok := req.shared[stateKey[T]{}].(T)
	return v, ok
}

// State is a guard that yields injected state of type T. Missing state is a
// wiring bug and fails with a 500.
type State[T any] struct {
	Value T
}

// ResolveParam implements Param.
func (s *State[T]) ResolveParam(_ context.Context, req *Request) error {
	v, ok := Lookup[T](req)
	if !ok {
		return ServerError(fmt.Sprintf("no state of type %s provided", reflect.TypeFor[T]()))
	}
	s.Value = v
	return nil
}
