package seam_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/seam"
)

func num() seam.Info { return seam.Info{Shape: seam.Primitive(seam.KindNumber)} }
func str() seam.Info { return seam.Info{Shape: seam.Primitive(seam.KindString)} }

func TestShape_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		info seam.Info
		want string
	}{
		"primitive": {
			info: seam.Describe("a name", seam.Primitive(seam.KindString)),
			want: `{"description":"a name","shape":{"type":"String"}}`,
		},
		"array": {
			info: seam.Info{Shape: seam.ArrayOf(num())},
			want: `{"description":"","shape":{"type":"ArrayOf","value":{"description":"","shape":{"type":"Number"}}}}`,
		},
		"empty tuple": {
			info: seam.Info{Shape: seam.TupleOf()},
			want: `{"description":"","shape":{"type":"TupleOf","values":[]}}`,
		},
		"object keeps declaration order": {
			info: seam.Info{Shape: seam.Object(
				seam.Prop("b", num()),
				seam.Prop("a", seam.Describe("first", seam.Primitive(seam.KindString))),
			)},
			want: `{"description":"","shape":{"type":"Object","keys":{` +
				`"b":{"description":"","shape":{"type":"Number"}},` +
				`"a":{"description":"first","shape":{"type":"String"}}}}}`,
		},
		"literal": {
			info: seam.Info{Shape: seam.StringLiteral("on")},
			want: `{"description":"","shape":{"type":"StringLiteral","literal":"on"}}`,
		},
		"optional without element": {
			info: seam.Info{Shape: seam.Shape{Kind: seam.KindOptional}},
			want: `{"description":"","shape":{"type":"Optional","value":{"description":"","shape":{"type":"Any"}}}}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := json.Marshal(tc.info)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))
		})
	}
}

func TestShape_roundTrip(t *testing.T) {
	t.Parallel()

	tests := map[string]seam.Info{
		"string":  str(),
		"binary":  seam.Describe("Binary data", seam.Primitive(seam.KindBinary)),
		"array":   {Shape: seam.ArrayOf(num())},
		"map":     {Shape: seam.ObjectOf(seam.Describe("count", seam.Primitive(seam.KindNumber)))},
		"tuple":   {Shape: seam.TupleOf(str(), num(), seam.Info{Shape: seam.Primitive(seam.KindNull)})},
		"enum":    {Shape: seam.Enum("red", "green", "blue")},
		"literal": {Shape: seam.StringLiteral(`say "hi"`)},
		"nested object": {Shape: seam.Object(
			seam.Prop("z", seam.Info{Shape: seam.Optional(str())}),
			seam.Prop("y", seam.Info{Shape: seam.Object(
				seam.Prop("inner", seam.Info{Shape: seam.ArrayOf(seam.Info{Shape: seam.OneOf(str(), num())})}),
			)}),
			seam.Prop("a", seam.Describe("unknown", seam.Primitive(seam.KindUnknown))),
		)},
		"empty object": {Shape: seam.Object()},
	}

	for name, info := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := json.Marshal(info)
			require.NoError(t, err)

			var got seam.Info
			require.NoError(t, json.Unmarshal(b, &got))
			assert.Equal(t, info, got)
		})
	}
}

func TestShape_UnmarshalJSON_invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not JSON":         `{"type":`,
		"not an object":    `["String"]`,
		"unknown type":     `{"type":"Integer"}`,
		"missing value":    `{"type":"ArrayOf"}`,
		"bad nested shape": `{"type":"Object","keys":{"a":{"description":"","shape":{"type":"Nope"}}}}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var s seam.Shape
			err := s.UnmarshalJSON([]byte(data))
			require.ErrorIs(t, err, seam.ErrInvalidShape)
		})
	}
}

func TestShape_UnmarshalJSON_keyOrder(t *testing.T) {
	t.Parallel()

	doc := `{"type":"Object","keys":{"zeta":{"description":"","shape":{"type":"Number"}},` +
		`"alpha":{"description":"","shape":{"type":"String"}},"mid":{"description":"","shape":{"type":"Boolean"}}}}`

	var s seam.Shape
	require.NoError(t, s.UnmarshalJSON([]byte(doc)))

	var names []string
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)

	info, ok := s.Field("mid")
	require.True(t, ok)
	assert.Equal(t, seam.KindBoolean, info.Shape.Kind)

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestShape_MarshalYAML(t *testing.T) {
	t.Parallel()

	info := seam.Describe("a point", seam.Object(
		seam.Prop("y", num()),
		seam.Prop("x", num()),
		seam.Prop("label", seam.Info{Shape: seam.Optional(str())}),
	))

	b, err := yaml.Marshal(info)
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, "description: a point")
	assert.Contains(t, out, "type: Object")
	assert.Contains(t, out, "type: Optional")

	y := strings.Index(out, "y:")
	x := strings.Index(out, "x:")
	label := strings.Index(out, "label:")
	require.NotEqual(t, -1, y)
	assert.Less(t, y, x)
	assert.Less(t, x, label)

	// The YAML document carries the same structure as the JSON one.
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(b, &generic))
	jb, err := json.Marshal(generic)
	require.NoError(t, err)
	assert.Equal(t, "Number", gjson.GetBytes(jb, "shape.keys.x.shape.type").String())
	assert.Equal(t, "String", gjson.GetBytes(jb, "shape.keys.label.shape.value.shape.type").String())
}

func TestShape_String(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		shape seam.Shape
		want  string
	}{
		"primitive": {shape: seam.Primitive(seam.KindBoolean), want: "boolean"},
		"array":     {shape: seam.ArrayOf(str()), want: "string[]"},
		"array of union": {
			shape: seam.ArrayOf(seam.Info{Shape: seam.OneOf(str(), num())}),
			want:  "(string | number)[]",
		},
		"tuple": {shape: seam.TupleOf(str(), num()), want: "[string, number]"},
		"map":   {shape: seam.ObjectOf(num()), want: "{ [key: string]: number }"},
		"object": {
			shape: seam.Object(
				seam.Prop("id", num()),
				seam.Prop("tags", seam.Info{Shape: seam.Optional(seam.Info{Shape: seam.ArrayOf(str())})}),
			),
			want: "{ id: number, tags?: string[] }",
		},
		"empty object": {shape: seam.Object(), want: "{}"},
		"enum":         {shape: seam.Enum("a", "b"), want: `"a" | "b"`},
		"optional":     {shape: seam.Optional(num()), want: "number | undefined"},
		"unknown":      {shape: seam.Primitive(seam.KindUnknown), want: "unknown"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.shape.String())
		})
	}
}
