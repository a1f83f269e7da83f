package seam

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem. It wraps ServeHTTP only; Handle never runs it.
type Middleware func(next http.Handler) http.Handler

// Recovery returns middleware that recovers from panics raised outside the
// dispatcher, such as in other middleware, and responds with a 500.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					ErrorResponse(ServerError(fmt.Sprintf("panic: %v", rec))).WriteHTTP(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
