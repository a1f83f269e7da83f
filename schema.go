package seam

import (
	"encoding"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/muir/reflectutils"
)

// Describer is implemented by types that describe their own shape. It is
// called on the zero value and must not depend on the receiver's contents.
type Describer interface {
	DescribeShape() Info
}

// Documenter is implemented by types that want a description attached to
// their derived shape.
type Documenter interface {
	Doc() string
}

var (
	describerType     = reflect.TypeFor[Describer]()
	documenterType    = reflect.TypeFor[Documenter]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// ShapeOf describes T without evaluating any value of it.
func ShapeOf[T any]() Info {
	return shapeOf(reflect.TypeFor[T]())
}

func shapeOf(t reflect.Type) Info {
	return (&shaper{visiting: make(map[reflect.Type]bool)}).info(t)
}

// shaper walks a type graph. visiting holds the named composite types
// currently being expanded so that recursive types terminate.
type shaper struct {
	visiting map[reflect.Type]bool
}

func (s *shaper) info(t reflect.Type) Info {
	if d, ok := implementer[Describer](t, describerType); ok {
		return d.DescribeShape()
	}

	if t.Name() != "" && composite(t.Kind()) {
		if s.visiting[t] {
			return Describe("Recursive reference to "+reflectutils.TypeName(t), Primitive(KindAny))
		}
		s.visiting[t] = true
		defer delete(s.visiting, t)
	}

	info := s.derive(t)
	if d, ok := implementer[Documenter](t, documenterType); ok {
		info.Description = d.Doc()
	}
	return info
}

// composite reports whether values of kind k contain other values, and so
// whether a named type of that kind can refer to itself.
func composite(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		return true
	}
	return false
}

// implementer returns a zero value of t (or *t) as I when either implements it.
func implementer[I any](t reflect.Type, iface reflect.Type) (I, bool) {
	var zero I
	if t.Kind() == reflect.Interface {
		return zero, false
	}
	if t.Implements(iface) {
		if t.Kind() == reflect.Pointer {
			v, ok := reflect.New(t.Elem()).Interface().(I)
			return v, ok
		}
		v, ok := reflect.Zero(t).Interface().(I)
		return v, ok
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface) {
		v, ok := reflect.New(t).Interface().(I)
		return v, ok
	}
	return zero, false
}

func (s *shaper) derive(t reflect.Type) Info {
	// Handle well-known types.
	switch t {
	case reflect.TypeFor[time.Time]():
		return Describe("A datetime (RFC 3339)", Primitive(KindString))
	case reflect.TypeFor[time.Duration]():
		return Describe("A duration in nanoseconds", Primitive(KindNumber))
	case reflect.TypeFor[uuid.UUID]():
		return Describe("A UUID", Primitive(KindString))
	case reflect.TypeFor[Void]():
		return Info{Shape: Primitive(KindNull)}
	}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		if t.Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(jsonMarshalerType) {
			if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
				// json.RawMessage and friends carry arbitrary JSON.
				return Info{Shape: Primitive(KindAny)}
			}
			return Info{Shape: Primitive(KindUnknown)}
		}
		if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
			return Info{Shape: Primitive(KindString)}
		}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return Info{Shape: Primitive(KindString)}
	case reflect.Bool:
		return Info{Shape: Primitive(KindBoolean)}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Info{Shape: Primitive(KindNumber)}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Describe("Base64 encoded bytes", Primitive(KindString))
		}
		return Info{Shape: ArrayOf(s.info(t.Elem()))}
	case reflect.Array:
		return Info{Shape: ArrayOf(s.info(t.Elem()))}
	case reflect.Map:
		if !mapKeyOK(t.Key()) {
			return Info{Shape: Primitive(KindUnknown)}
		}
		return Info{Shape: ObjectOf(s.info(t.Elem()))}
	case reflect.Pointer:
		return Info{Shape: Optional(s.info(t.Elem()))}
	case reflect.Interface:
		return Info{Shape: Primitive(KindAny)}
	case reflect.Struct:
		return s.object(t)
	default:
		return Info{Shape: Primitive(KindUnknown)}
	}
}

// mapKeyOK reports whether encoding/json style encoders write keys of type k
// as object keys.
func mapKeyOK(k reflect.Type) bool {
	if k.Kind() == reflect.String || k.Implements(textMarshalerType) {
		return true
	}
	//exhaustive:ignore
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// object converts a struct type to an Object shape. Embedded structs without
// an explicit JSON name are flattened, as the JSON encoder does.
func (s *shaper) object(t reflect.Type) Info {
	var fields []Field
	reflectutils.WalkStructElements(t, func(f reflect.StructField) bool {
		name, opts, tagged := jsonFieldName(f)
		if name == "-" {
			return false
		}
		if f.Anonymous && !tagged && derefStruct(f.Type) {
			return true
		}
		if !f.IsExported() {
			return false
		}

		var prop Info
		if hasTagOption(opts, "string") {
			prop = Info{Shape: Primitive(KindString)}
		} else {
			prop = s.info(f.Type)
		}

		if (hasTagOption(opts, "omitempty") || hasTagOption(opts, "omitzero")) && prop.Shape.Kind != KindOptional {
			prop = Info{Shape: Optional(prop)}
		}

		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}

		fields = append(fields, Prop(name, prop))
		return false
	})

	return Info{Shape: Object(fields...)}
}

// jsonFieldName returns the JSON field name for a struct field, its tag
// options, and whether the name came from the tag.
func jsonFieldName(f reflect.StructField) (string, string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name, "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name, opts, false
	}
	return name, opts, true
}

func hasTagOption(opts, want string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == want {
			return true
		}
	}
	return false
}

func derefStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
