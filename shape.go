package seam

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Kind names a shape variant. The values are the "type" field of the
// exported schema.
type Kind string

// Shape kinds.
const (
	KindString        Kind = "String"
	KindNumber        Kind = "Number"
	KindBoolean       Kind = "Boolean"
	KindNull          Kind = "Null"
	KindAny           Kind = "Any"
	KindUnknown       Kind = "Unknown"
	KindBinary        Kind = "Binary"
	KindArrayOf       Kind = "ArrayOf"
	KindTupleOf       Kind = "TupleOf"
	KindObjectOf      Kind = "ObjectOf"
	KindObject        Kind = "Object"
	KindOneOf         Kind = "OneOf"
	KindStringLiteral Kind = "StringLiteral"
	KindOptional      Kind = "Optional"
)

func (k Kind) valid() bool {
	//exhaustive:ignore
	switch k {
	case KindString, KindNumber, KindBoolean, KindNull, KindAny, KindUnknown, KindBinary,
		KindArrayOf, KindTupleOf, KindObjectOf, KindObject, KindOneOf, KindStringLiteral, KindOptional:
		return true
	}
	return false
}

// ErrInvalidShape is returned when a schema document cannot be decoded.
var ErrInvalidShape = errors.New("invalid shape")

// Info is a shape together with its human readable description.
type Info struct {
	Description string `json:"description" yaml:"description"`
	Shape       Shape  `json:"shape" yaml:"shape"`
}

// Field is one entry of an Object shape. Object fields keep the order in
// which they were declared.
type Field struct {
	Name string
	Info Info
}

// Shape describes the JSON-compatible structure of a value.
//
// Only the fields relevant to Kind are used: Elem for ArrayOf, ObjectOf and
// Optional; Items for TupleOf and OneOf; Fields for Object; Literal for
// StringLiteral.
//
// On the wire a shape is an object tagged by "type". The auxiliary data sits
// under a key named after its role, and client generators rely on these keys:
//
//	{"type":"ArrayOf","value":{...}}          ArrayOf, ObjectOf, Optional
//	{"type":"OneOf","values":[{...},...]}     TupleOf, OneOf
//	{"type":"Object","keys":{"name":{...}}}   Object, in declaration order
//	{"type":"StringLiteral","literal":"on"}   StringLiteral
//
// Each nested {...} is an Info: {"description":...,"shape":{...}}.
type Shape struct {
	Kind    Kind
	Elem    *Info
	Items   []Info
	Fields  []Field
	Literal string
}

// Primitive returns a shape with no auxiliary data (String, Number, Boolean,
// Null, Any, Unknown or Binary).
func Primitive(k Kind) Shape { return Shape{Kind: k} }

// ArrayOf describes an array whose values all have the same shape.
func ArrayOf(elem Info) Shape { return Shape{Kind: KindArrayOf, Elem: &elem} }

// TupleOf describes a fixed length array of mixed shapes.
func TupleOf(items ...Info) Shape { return Shape{Kind: KindTupleOf, Items: items} }

// ObjectOf describes a string keyed map with homogeneous values.
func ObjectOf(elem Info) Shape { return Shape{Kind: KindObjectOf, Elem: &elem} }

// Object describes an object with known keys.
func Object(fields ...Field) Shape { return Shape{Kind: KindObject, Fields: fields} }

// OneOf describes a value that may take any of the given shapes.
func OneOf(items ...Info) Shape { return Shape{Kind: KindOneOf, Items: items} }

// StringLiteral describes a string that must have exactly the given value.
func StringLiteral(literal string) Shape { return Shape{Kind: KindStringLiteral, Literal: literal} }

// Optional describes a value that need not be provided.
func Optional(elem Info) Shape { return Shape{Kind: KindOptional, Elem: &elem} }

// Enum is a OneOf over string literals.
func Enum(values ...string) Shape {
	var items []Info
	for _, v := range values {
		items = append(items, Info{Shape: StringLiteral(v)})
	}
	return OneOf(items...)
}

// Describe attaches a description to a shape.
func Describe(desc string, s Shape) Info { return Info{Description: desc, Shape: s} }

// Prop builds an Object field.
func Prop(name string, info Info) Field { return Field{Name: name, Info: info} }

// Field returns the named Object field.
func (s Shape) Field(name string) (Info, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Info, true
		}
	}
	return Info{}, false
}

// MarshalJSON encodes the shape as {"type": Kind, ...} with Object keys in
// declaration order.
func (s Shape) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.WriteString(strconv.Quote(string(s.Kind)))

	//exhaustive:ignore
	switch s.Kind {
	case KindArrayOf, KindObjectOf, KindOptional:
		elem := Info{Shape: Primitive(KindAny)}
		if s.Elem != nil {
			elem = *s.Elem
		}
		b, err := json.Marshal(elem)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"value":`)
		buf.Write(b)

	case KindTupleOf, KindOneOf:
		buf.WriteString(`,"values":[`)
		for i, item := range s.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(item)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')

	case KindObject:
		buf.WriteString(`,"keys":{`)
		for i, f := range s.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			b, err := json.Marshal(f.Info)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			buf.Write(b)
		}
		buf.WriteByte('}')

	case KindStringLiteral:
		lit, err := json.Marshal(s.Literal)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"literal":`)
		buf.Write(lit)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the format written by MarshalJSON. Object keys are
// read in document order.
func (s *Shape) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidShape)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: expected an object", ErrInvalidShape)
	}

	out := Shape{Kind: Kind(doc.Get("type").String())}
	if !out.Kind.valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidShape, out.Kind)
	}

	//exhaustive:ignore
	switch out.Kind {
	case KindArrayOf, KindObjectOf, KindOptional:
		elem, err := decodeInfo(doc.Get("value"))
		if err != nil {
			return fmt.Errorf("%w: %s value: %w", ErrInvalidShape, out.Kind, err)
		}
		out.Elem = &elem

	case KindTupleOf, KindOneOf:
		for _, v := range doc.Get("values").Array() {
			item, err := decodeInfo(v)
			if err != nil {
				return fmt.Errorf("%w: %s values: %w", ErrInvalidShape, out.Kind, err)
			}
			out.Items = append(out.Items, item)
		}

	case KindObject:
		var err error
		doc.Get("keys").ForEach(func(key, value gjson.Result) bool {
			var info Info
			if info, err = decodeInfo(value); err != nil {
				err = fmt.Errorf("%w: key %q: %w", ErrInvalidShape, key.String(), err)
				return false
			}
			out.Fields = append(out.Fields, Field{Name: key.String(), Info: info})
			return true
		})
		if err != nil {
			return err
		}

	case KindStringLiteral:
		out.Literal = doc.Get("literal").String()
	}

	*s = out
	return nil
}

func decodeInfo(r gjson.Result) (Info, error) {
	if !r.Exists() {
		return Info{}, errors.New("missing")
	}
	var info Info
	if err := json.Unmarshal([]byte(r.Raw), &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// MarshalYAML mirrors MarshalJSON so that YAML exports keep Object key order.
func (s Shape) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return err
		}
		node.Content = append(node.Content, yamlString(key), val)
		return nil
	}

	if err := add("type", string(s.Kind)); err != nil {
		return nil, err
	}

	//exhaustive:ignore
	switch s.Kind {
	case KindArrayOf, KindObjectOf, KindOptional:
		elem := Info{Shape: Primitive(KindAny)}
		if s.Elem != nil {
			elem = *s.Elem
		}
		if err := add("value", elem); err != nil {
			return nil, err
		}
	case KindTupleOf, KindOneOf:
		items := s.Items
		if items == nil {
			items = []Info{}
		}
		if err := add("values", items); err != nil {
			return nil, err
		}
	case KindObject:
		keys := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range s.Fields {
			val := &yaml.Node{}
			if err := val.Encode(f.Info); err != nil {
				return nil, err
			}
			keys.Content = append(keys.Content, yamlString(f.Name), val)
		}
		node.Content = append(node.Content, yamlString("keys"), keys)
	case KindStringLiteral:
		if err := add("literal", s.Literal); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func yamlString(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// String renders the shape as a TypeScript-like type expression.
func (s Shape) String() string {
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s Shape) render(b *strings.Builder) {
	//exhaustive:ignore
	switch s.Kind {
	case KindString:
		b.WriteString("string")
	case KindNumber:
		b.WriteString("number")
	case KindBoolean:
		b.WriteString("boolean")
	case KindNull:
		b.WriteString("null")
	case KindAny:
		b.WriteString("any")
	case KindBinary:
		b.WriteString("binary")
	case KindArrayOf:
		e := s.elemOrAny()
		if e.Kind == KindOneOf || e.Kind == KindOptional {
			b.WriteString("(")
			e.render(b)
			b.WriteString(")[]")
			return
		}
		e.render(b)
		b.WriteString("[]")
	case KindTupleOf:
		b.WriteString("[")
		for i, item := range s.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.Shape.render(b)
		}
		b.WriteString("]")
	case KindObjectOf:
		b.WriteString("{ [key: string]: ")
		s.elemOrAny().render(b)
		b.WriteString(" }")
	case KindObject:
		if len(s.Fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			if f.Info.Shape.Kind == KindOptional {
				b.WriteString("?: ")
				f.Info.Shape.elemOrAny().render(b)
				continue
			}
			b.WriteString(": ")
			f.Info.Shape.render(b)
		}
		b.WriteString(" }")
	case KindOneOf:
		for i, item := range s.Items {
			if i > 0 {
				b.WriteString(" | ")
			}
			item.Shape.render(b)
		}
	case KindStringLiteral:
		b.WriteString(strconv.Quote(s.Literal))
	case KindOptional:
		s.elemOrAny().render(b)
		b.WriteString(" | undefined")
	default:
		b.WriteString("unknown")
	}
}

func (s Shape) elemOrAny() Shape {
	if s.Elem == nil {
		return Primitive(KindAny)
	}
	return s.Elem.Shape
}
