package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/seam/apitest"
	"github.com/bjaus/seam/jwtauth"
)

func newTestClient(t *testing.T) *apitest.Client {
	t.Helper()

	notes, err := openNotes(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = notes.Close() })

	return apitest.NewClient(t, newAPI(notes, jwtauth.NewVerifier([]byte("test"))))
}

func TestMaths(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	div := apitest.Call[DivisionOutput](t, c, "v1/maths.divide", DivisionInput{A: 20, B: 10})
	require.Equal(t, http.StatusOK, div.Status)
	assert.JSONEq(t, `{"a":20,"b":10,"result":2}`, string(div.Raw))

	zero := apitest.Call[DivisionOutput](t, c, "v1/maths.divide", DivisionInput{A: 1})
	assert.Equal(t, http.StatusBadRequest, zero.Status)
	require.NotNil(t, zero.Error)
	assert.Equal(t, "Division by zero", zero.Error.Message)

	product := apitest.Call[float64](t, c, "v1/maths.multiply", Factors{Values: []float64{2, 3, 4}})
	require.NotNil(t, product.Body)
	assert.InDelta(t, 24.0, *product.Body, 1e-9)

	empty := apitest.Call[float64](t, c, "v1/maths.multiply", Factors{})
	assert.Equal(t, http.StatusUnprocessableEntity, empty.Status)
}

func TestNotes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	first := apitest.Call[Note](t, c, "v1/notes.create", NewNote{Title: "first"})
	require.Equal(t, http.StatusOK, first.Status)
	require.NotNil(t, first.Body)
	second := apitest.Call[Note](t, c, "v1/notes.create", NewNote{Title: "second", Body: "text"})
	require.NotNil(t, second.Body)

	list := apitest.Get[[]Note](t, c, "v1/notes.list")
	require.NotNil(t, list.Body)
	require.Len(t, *list.Body, 2)
	assert.Equal(t, "second", (*list.Body)[0].Title)

	got := apitest.Call[Note](t, c, "v1/notes.get", NoteID{ID: first.Body.ID})
	require.NotNil(t, got.Body)
	assert.Equal(t, *first.Body, *got.Body)

	missing := apitest.Call[Note](t, c, "v1/notes.get", NoteID{ID: 999})
	assert.Equal(t, http.StatusNotFound, missing.Status)

	untitled := apitest.Call[Note](t, c, "v1/notes.create", NewNote{Title: " "})
	assert.Equal(t, http.StatusUnprocessableEntity, untitled.Status)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	tok := apitest.Call[Token](t, c, "v1/auth.login", Login{User: "alice"})
	require.Equal(t, http.StatusOK, tok.Status)
	require.NotNil(t, tok.Body)

	header := http.Header{"Authorization": []string{"Bearer " + tok.Body.Token}}
	who := apitest.Do[Who](t, c, http.MethodGet, "v1/auth.whoami", header, nil)
	require.Equal(t, http.StatusOK, who.Status)
	require.NotNil(t, who.Body)
	assert.Equal(t, "alice", who.Body.User)

	anon := apitest.Get[Who](t, c, "v1/auth.whoami")
	assert.Equal(t, http.StatusUnauthorized, anon.Status)

	nobody := apitest.Call[Token](t, c, "v1/auth.login", Login{})
	assert.Equal(t, http.StatusForbidden, nobody.Status)
}

func TestMeta(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	header := http.Header{"X-Request-ID": []string{"sample-1"}}
	st := apitest.Do[Status](t, c, http.MethodGet, "v1/meta.status", header, nil)
	require.NotNil(t, st.Body)
	assert.Equal(t, "sample-1", st.Body.RequestID)

	pong := apitest.Get[Pong](t, c, "v1/meta.ping")
	require.NotNil(t, pong.Body)
	assert.Equal(t, "127.0.0.1", pong.Body.Client)

	echoed := apitest.Do[any](t, c, http.MethodPost, "v1/meta.echo",
		http.Header{"Content-Type": []string{"text/plain"}}, bytes.NewReader([]byte("hello")))
	assert.Equal(t, "hello", string(echoed.Raw))
	assert.Equal(t, "text/plain", echoed.Headers.Get("Content-Type"))

	big := apitest.Do[any](t, c, http.MethodPost, "v1/meta.echo", nil, bytes.NewReader(make([]byte, 65<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, big.Status)
}

func TestWriteInfo(t *testing.T) {
	t.Parallel()

	notes, err := openNotes(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = notes.Close() })

	a := newAPI(notes, jwtauth.NewVerifier([]byte("test")))
	require.Len(t, a.Info(), 10)
	assert.Equal(t, "maths.divide", a.Info()[0].Name)
}
