// Package apitest provides typed test helpers for seam apis.
package apitest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/bjaus/seam"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from an api.
func NewClient(t testing.TB, a *seam.Api) *Client {
	t.Helper()
	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded API response. Body is set for successful
// responses with content, Error for failed ones.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Error   *seam.ErrorBody
	Raw     []byte
}

// Call sends body as JSON to the route key with POST.
func Call[Resp any](t testing.TB, c *Client, key string, body any) *Response[Resp] {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("apitest: marshal request body: %v", err)
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	return Do[Resp](t, c, http.MethodPost, key, header, bytes.NewReader(b))
}

// Get sends a GET request to the route key.
func Get[Resp any](t testing.TB, c *Client, key string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodGet, key, nil, nil)
}

// Do sends an arbitrary request to the route key.
func Do[Resp any](t testing.TB, c *Client, method, key string, header http.Header, body io.Reader) *Response[Resp] {
	t.Helper()

	url := c.Server.URL + "/" + strings.TrimPrefix(key, "/")
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read body: %v", err)
	}

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     raw,
	}

	if len(raw) == 0 {
		return result
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e seam.ErrorBody
		if decErr := json.Unmarshal(raw, &e); decErr == nil {
			result.Error = &e
		}
		return result
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var decoded Resp
		if decErr := json.Unmarshal(raw, &decoded); decErr == nil {
			result.Body = &decoded
		}
	}
	return result
}
