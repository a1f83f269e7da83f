package seam

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	json "github.com/goccy/go-json"
)

// Void is used as a result type when a handler has no response body
// (results in 204 No Content).
type Void struct{}

// Handler is a compiled handler: an ordered list of parameter slots and a
// typed invoker. Build one with Func0 … Func4.
type Handler struct {
	slots  []slot
	body   *bodyType
	resp   *Info
	invoke func(ctx context.Context, args []any) (*Response, *Error)
	err    error
}

// slot resolves one handler parameter. body is nil for guards.
type slot struct {
	typ  reflect.Type
	body *bodyType
	fill func(ctx context.Context, req *Request, data []byte) (any, error)
}

// Func0 wraps a handler without parameters.
func Func0[R any](fn func(context.Context) (R, error)) *Handler {
	return newHandler(func(ctx context.Context, _ []any) (R, error) {
		return fn(ctx)
	})
}

// Func1 wraps a handler with one parameter.
func Func1[P1, R any](fn func(context.Context, P1) (R, error)) *Handler {
	return newHandler(func(ctx context.Context, args []any) (R, error) {
		return fn(ctx, args[0].(P1))
	}, slotFor[P1])
}

// Func2 wraps a handler with two parameters.
func Func2[P1, P2, R any](fn func(context.Context, P1, P2) (R, error)) *Handler {
	return newHandler(func(ctx context.Context, args []any) (R, error) {
		return fn(ctx, args[0].(P1), args[1].(P2))
	}, slotFor[P1], slotFor[P2])
}

// Func3 wraps a handler with three parameters.
func Func3[P1, P2, P3, R any](fn func(context.Context, P1, P2, P3) (R, error)) *Handler {
	return newHandler(func(ctx context.Context, args []any) (R, error) {
		return fn(ctx, args[0].(P1), args[1].(P2), args[2].(P3))
	}, slotFor[P1], slotFor[P2], slotFor[P3])
}

// Func4 wraps a handler with four parameters.
func Func4[P1, P2, P3, P4, R any](fn func(context.Context, P1, P2, P3, P4) (R, error)) *Handler {
	return newHandler(func(ctx context.Context, args []any) (R, error) {
		return fn(ctx, args[0].(P1), args[1].(P2), args[2].(P3), args[3].(P4))
	}, slotFor[P1], slotFor[P2], slotFor[P3], slotFor[P4])
}

func newHandler[R any](call func(context.Context, []any) (R, error), slots ...func() (slot, error)) *Handler {
	h := &Handler{}
	bodyAt := -1
	for i, build := range slots {
		s, err := build()
		if err != nil {
			h.err = fmt.Errorf("handler parameter %d: %w", i+1, err)
			return h
		}
		if s.body != nil {
			if h.body != nil {
				h.err = fmt.Errorf("handler parameter %d (%s): only one Body parameter is allowed", i+1, s.typ)
				return h
			}
			h.body, bodyAt = s.body, i
		}
		h.slots = append(h.slots, s)
	}
	if h.body != nil && bodyAt != len(slots)-1 {
		h.err = fmt.Errorf("handler parameter %d (%s): a Body must be the last parameter", bodyAt+1, h.body.typ)
		return h
	}

	encode, info := responseFor[R]()
	h.resp = info
	h.invoke = func(ctx context.Context, args []any) (*Response, *Error) {
		r, err := call(ctx, args)
		if e, ok := err.(*Error); ok && e == nil {
			err = nil
		}
		if err != nil {
			// The failure is the handler's, even when it returns an error
			// it received from a guard.
			return nil, Translate(err).asKind(ErrHandler)
		}
		return encode(r)
	}
	return h
}

func slotFor[P any]() (slot, error) {
	typ := reflect.TypeFor[P]()
	zero := any(new(P))
	_, isParam := zero.(Param)
	_, isBody := zero.(Body)

	switch {
	case isParam && isBody:
		return slot{}, fmt.Errorf("%s implements both Param and Body", typ)
	case isParam:
		if pc, ok := zero.(paramChecker); ok {
			if err := pc.checkParam(); err != nil {
				return slot{}, err
			}
		}
		return slot{typ: typ, fill: func(ctx context.Context, req *Request, _ []byte) (any, error) {
			var v P
			if err := any(&v).(Param).ResolveParam(ctx, req); err != nil {
				return nil, err
			}
			return v, nil
		}}, nil
	case isBody:
		return slot{typ: typ, body: newBodyType[P](), fill: func(_ context.Context, req *Request, data []byte) (any, error) {
			var v P
			if err := decodeBody(any(&v).(Body), data, req.Header.Get("Content-Type")); err != nil {
				return nil, err
			}
			return v, nil
		}}, nil
	default:
		return slot{}, fmt.Errorf("%s is neither a Param nor a Body", typ)
	}
}

// responseFor returns the encoder for results of type R and the shape of
// the response, nil for Void.
func responseFor[R any]() (func(R) (*Response, *Error), *Info) {
	rt := reflect.TypeFor[R]()
	if rt == reflect.TypeFor[Void]() || rt == reflect.TypeFor[*Void]() {
		return func(R) (*Response, *Error) {
			return &Response{Status: http.StatusNoContent, Header: make(http.Header)}, nil
		}, nil
	}

	info := shapeOf(rt)
	if rt.Kind() == reflect.Pointer {
		// A nil result is a 404 rather than an encoded null.
		info = shapeOf(rt.Elem())
	}

	encode := func(r R) (*Response, *Error) {
		if isNil(r) {
			return nil, NotFound().withKind(ErrHandler)
		}

		var v any = r
		if _, ok := v.(Responder); !ok {
			if pr, ok := any(&r).(Responder); ok {
				v = pr
			}
		}

		var body []byte
		var contentType string
		var err error
		if rs, ok := v.(Responder); ok {
			body, contentType, err = rs.ResponseBody()
		} else {
			body, err = json.Marshal(r)
			contentType = "application/json"
		}
		if err != nil {
			return nil, ServerError(fmt.Sprintf("encode %s response: %v", rt, err)).
				WithCause(err).
				withKind(ErrInternal)
		}
		return buildResponse(v, http.StatusOK, body, contentType), nil
	}
	return encode, &info
}

func isNil[R any](r R) bool {
	v := reflect.ValueOf(&r).Elem()
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}
