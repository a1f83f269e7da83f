package seam

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxPresize bounds the buffer allocated up front from Content-Length.
const maxPresize = 64 << 10

// errCapExceeded is returned by cappedReader once the cap is passed.
var errCapExceeded = errors.New("read past body cap")

// cappedReader fails as soon as more than max bytes have been read, so an
// oversized payload is rejected before it is buffered in full.
type cappedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	// Allow one byte past the cap so that N+1 is detectable.
	if room := c.max + 1 - c.read; int64(len(p)) > room {
		p = p[:room]
	}
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.max {
		return n, errCapExceeded
	}
	return n, err
}

// tooLarge is the error for payloads over the cap.
func tooLarge(limit, got int64) *Error {
	return Errorf(http.StatusRequestEntityTooLarge, "request body exceeds %d bytes (got at least %d)", limit, got).
		WithExternalMessage("Payload too large").
		withKind(ErrBodyTooLarge)
}

// readBody drains the request payload, enforcing limit when it is positive.
func readBody(req *Request, limit int64) ([]byte, *Error) {
	if req.body == nil {
		return nil, nil
	}
	if limit > 0 && req.ContentLength > limit {
		return nil, tooLarge(limit, req.ContentLength)
	}

	src := req.body
	var capped *cappedReader
	if limit > 0 {
		capped = &cappedReader{r: src, max: limit}
		src = capped
	}

	// The declared length only sizes the first allocation; the buffer grows
	// with the bytes actually received.
	var buf bytes.Buffer
	if req.ContentLength > 0 {
		buf.Grow(int(min(req.ContentLength, maxPresize)))
	}
	if _, err := buf.ReadFrom(src); err != nil {
		if errors.Is(err, errCapExceeded) {
			return nil, tooLarge(limit, capped.read)
		}
		return nil, Errorf(http.StatusBadRequest, "read request body: %v", err).
			WithExternalMessage("Could not read request body").
			WithCause(err).
			withKind(ErrBodyDecode)
	}
	return buf.Bytes(), nil
}

// effectiveLimit resolves the byte cap for a route.
func effectiveLimit(route, body, api int64) int64 {
	for _, l := range []int64{route, body} {
		if l != 0 {
			return l
		}
	}
	return api
}

func limitString(n int64) string {
	if n <= 0 {
		return "none"
	}
	return fmt.Sprintf("%d bytes", n)
}
