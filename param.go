package seam

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/google/uuid"
)

// Param is implemented (on the pointer) by handler parameters resolved from
// the request metadata and injected state. Guards never see the payload.
type Param interface {
	ResolveParam(ctx context.Context, req *Request) error
}

// paramChecker lets wrapper params reject bad type arguments at registration.
type paramChecker interface {
	checkParam() error
}

// resolveInner resolves a fresh P.
func resolveInner[P any](ctx context.Context, req *Request) (P, error) {
	var v P
	p, ok := any(&v).(Param)
	if !ok {
		return v, ServerError(fmt.Sprintf("%s is not a Param", reflect.TypeFor[P]()))
	}
	err := p.ResolveParam(ctx, req)
	return v, err
}

func checkInner[P any](wrapper string) error {
	if _, ok := any(new(P)).(Param); !ok {
		return fmt.Errorf("%s[%s]: %s does not implement Param", wrapper, reflect.TypeFor[P](), reflect.TypeFor[P]())
	}
	return nil
}

// Maybe resolves P but never fails; OK reports whether P resolved.
type Maybe[P any] struct {
	Value P
	OK    bool
}

// ResolveParam implements Param.
func (m *Maybe[P]) ResolveParam(ctx context.Context, req *Request) error {
	v, err := resolveInner[P](ctx, req)
	if err != nil {
		return nil
	}
	m.Value, m.OK = v, true
	return nil
}

func (*Maybe[P]) checkParam() error { return checkInner[P]("Maybe") }

// Attempt resolves P but never fails; the failure, if any, is handed to the
// handler in Err, classified as ErrParamResolution. A handler that returns
// Err fails with ErrHandler, like any other handler error.
type Attempt[P any] struct {
	Value P
	Err   *Error
}

// ResolveParam implements Param.
func (a *Attempt[P]) ResolveParam(ctx context.Context, req *Request) error {
	v, err := resolveInner[P](ctx, req)
	if err != nil {
		a.Err = Translate(err).withKind(ErrParamResolution)
		return nil
	}
	a.Value = v
	return nil
}

func (*Attempt[P]) checkParam() error { return checkInner[P]("Attempt") }

// Meta is a read-only view of the request metadata.
type Meta struct {
	Method     string
	Path       string
	Header     http.Header
	RemoteAddr string
}

// ResolveParam implements Param.
func (m *Meta) ResolveParam(_ context.Context, req *Request) error {
	*m = Meta{
		Method:     req.Method,
		Path:       req.Path,
		Header:     req.Header.Clone(),
		RemoteAddr: req.RemoteAddr,
	}
	return nil
}

// RequestIDHeader is read by the RequestID param.
const RequestIDHeader = "X-Request-ID"

// RequestID is the client supplied request id, or a fresh UUID if the
// request has none.
type RequestID string

// ResolveParam implements Param.
func (r *RequestID) ResolveParam(_ context.Context, req *Request) error {
	id := req.Header.Get(RequestIDHeader)
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	*r = RequestID(id)
	return nil
}
