package seam

import (
	"net/http"
	"strconv"
)

// Response is the transport-neutral output of Handle.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Responder is implemented by handler results that render themselves.
type Responder interface {
	ResponseBody() ([]byte, string, error)
}

// HeaderSetter is optionally implemented by handler results to add response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// WriteHTTP writes the response to an http.ResponseWriter.
func (r *Response) WriteHTTP(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if len(r.Body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	w.WriteHeader(r.Status)
	if len(r.Body) > 0 {
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write(r.Body)
	}
}

// buildResponse turns a rendered result into a Response, applying the
// optional StatusCoder and HeaderSetter capabilities of v.
func buildResponse(v any, status int, body []byte, contentType string) *Response {
	resp := &Response{Status: status, Header: make(http.Header), Body: body}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	if hs, ok := v.(HeaderSetter); ok {
		hs.SetHeaders(resp.Header)
	}
	if sc, ok := v.(StatusCoder); ok {
		if code := sc.StatusCode(); code >= 200 && code < 600 {
			resp.Status = code
		}
	}
	return resp
}
