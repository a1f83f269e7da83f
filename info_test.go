package seam_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/bjaus/seam"
)

func newCatalog() *seam.Api {
	a := seam.New()
	a.Add("maths.divide").Description("Divides a by b").Handler(seam.Func1(divide))
	a.Add("meta.ping").Handler(seam.Func0(func(context.Context) (ping, error) { return ping{}, nil }))
	a.Add("notes.delete").Handler(seam.Func1(func(context.Context, seam.RequestID) (seam.Void, error) {
		return seam.Void{}, nil
	}))
	a.Add("blob.put").Handler(seam.Func1(func(context.Context, rawBody) (*point, error) { return nil, nil }))
	a.ServeInfo("/_info")
	return a
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := newCatalog().Info()
	require.Len(t, info, 4)

	seen := make(map[string]bool)
	var names []string
	for _, ri := range info {
		assert.False(t, seen[ri.Name], "duplicate %s", ri.Name)
		seen[ri.Name] = true
		names = append(names, ri.Name)
	}
	assert.Equal(t, []string{"maths.divide", "meta.ping", "notes.delete", "blob.put"}, names)

	divide := info[0]
	assert.Equal(t, "Divides a by b", divide.Description)
	assert.Equal(t, "POST", divide.Method)
	require.NotNil(t, divide.RequestType)
	require.NotNil(t, divide.ResponseType)
	assert.Equal(t, "{ a: number, b: number }", divide.RequestType.Shape.String())
	assert.Equal(t, "{ a: number, b: number, result: number }", divide.ResponseType.Shape.String())

	t.Run("no body", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, info[1].RequestType)
		assert.Nil(t, info[2].RequestType)
	})

	t.Run("void response", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, info[2].ResponseType)
	})

	t.Run("pointer response describes the element", func(t *testing.T) {
		t.Parallel()
		require.NotNil(t, info[3].ResponseType)
		assert.Equal(t, seam.KindObject, info[3].ResponseType.Shape.Kind)
		assert.Equal(t, seam.KindBinary, info[3].RequestType.Shape.Kind)
	})
}

func TestInfo_stable(t *testing.T) {
	t.Parallel()

	a := newCatalog()
	assert.Equal(t, a.Info(), a.Info())
}

func TestWriteInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newCatalog().WriteInfo(&buf))
	doc := buf.Bytes()

	require.True(t, gjson.ValidBytes(doc))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Equal(t, int64(4), gjson.GetBytes(doc, "#").Int())
	assert.Equal(t, "maths.divide", gjson.GetBytes(doc, "0.name").String())
	assert.Equal(t, "Object", gjson.GetBytes(doc, "0.request_type.shape.type").String())
	assert.Equal(t, "Number", gjson.GetBytes(doc, "0.response_type.shape.keys.result.shape.type").String())
	assert.False(t, gjson.GetBytes(doc, "2.response_type").Exists())

	var keys []string
	gjson.GetBytes(doc, "0.response_type.shape.keys").ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"a", "b", "result"}, keys)

	assert.NotContains(t, buf.String(), "_info")
}

func TestWriteInfoYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newCatalog().WriteInfoYAML(&buf))
	out := buf.String()

	assert.Contains(t, out, "name: maths.divide")
	assert.Contains(t, out, "method: POST")
	assert.Contains(t, out, "type: Object")
	assert.Less(t, strings.Index(out, "maths.divide"), strings.Index(out, "meta.ping"))
}

func TestReadInfo(t *testing.T) {
	t.Parallel()

	a := newCatalog()

	var buf bytes.Buffer
	require.NoError(t, a.WriteInfo(&buf))

	got, err := seam.ReadInfo(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Info(), got)

	_, err = seam.ReadInfo(strings.NewReader(`[{"name":"x","request_type":{"shape":{"type":"Bogus"}}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid shape")
}
