package seam

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// route is one entry of the route table. It is never modified once added.
type route struct {
	key     string
	desc    string
	method  string
	limit   int64
	timeout time.Duration
	handler *Handler
}

// RouteBuilder configures a route before its handler is attached.
type RouteBuilder struct {
	api     *Api
	key     string
	desc    string
	method  string
	limit   int64
	timeout time.Duration
}

// Add starts the registration of the route key. The route exists once
// Handler is called.
func (a *Api) Add(key string) *RouteBuilder {
	return &RouteBuilder{api: a, key: strings.TrimPrefix(key, "/")}
}

// Description sets the human readable description of the route.
func (b *RouteBuilder) Description(text string) *RouteBuilder {
	b.desc = text
	return b
}

// Method overrides the method implied by the handler's body. An explicit
// method always wins.
func (b *RouteBuilder) Method(method string) *RouteBuilder {
	b.method = strings.ToUpper(method)
	return b
}

// BodyLimit caps the request payload in bytes, overriding the cap of the
// body type and the API default. A negative value removes any cap.
func (b *RouteBuilder) BodyLimit(n int64) *RouteBuilder {
	b.limit = n
	return b
}

// Timeout bounds the time spent resolving parameters and running the handler.
func (b *RouteBuilder) Timeout(d time.Duration) *RouteBuilder {
	b.timeout = d
	return b
}

// Handler registers the route. It panics if the key is empty or already
// registered, if h is invalid, or if the API already served a request.
func (b *RouteBuilder) Handler(h *Handler) {
	if b.key == "" {
		panic("seam: empty route key")
	}
	if h == nil {
		panic(fmt.Sprintf("seam: nil handler for route %q", b.key))
	}
	if h.err != nil {
		panic(fmt.Sprintf("seam: route %q: %v", b.key, h.err))
	}

	method := b.method
	if method == "" {
		method = http.MethodGet
		if h.body != nil {
			method = h.body.method
		}
	}

	b.api.addRoute(&route{
		key:     b.key,
		desc:    b.desc,
		method:  method,
		limit:   b.limit,
		timeout: b.timeout,
		handler: h,
	})
}
