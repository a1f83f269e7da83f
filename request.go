package seam

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Request is the transport-neutral input of Handle.
//
// The payload is only reachable by the body slot of a handler; guards see
// everything else.
type Request struct {
	Method        string
	Path          string
	Header        http.Header
	RemoteAddr    string
	ContentLength int64 // -1 when unknown

	body   io.Reader
	states map[any]any
	shared map[any]any
}

// NewRequest builds a request with an optional payload.
func NewRequest(method, path string, body io.Reader) *Request {
	req := &Request{
		Method:        strings.ToUpper(method),
		Path:          path,
		Header:        make(http.Header),
		ContentLength: -1,
		body:          body,
	}
	switch b := body.(type) {
	case nil:
		req.ContentLength = 0
	case *bytes.Reader:
		req.ContentLength = int64(b.Len())
	case *bytes.Buffer:
		req.ContentLength = int64(b.Len())
	case *strings.Reader:
		req.ContentLength = int64(b.Len())
	}
	return req
}

// FromHTTP adapts an *http.Request. The returned request reads r.Body.
func FromHTTP(r *http.Request) *Request {
	req := &Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Header:        r.Header,
		RemoteAddr:    r.RemoteAddr,
		ContentLength: r.ContentLength,
	}
	if r.Body != nil && r.Body != http.NoBody {
		req.body = r.Body
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return req
}

// ContentType returns the media type of the payload without parameters.
func (r *Request) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
