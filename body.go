package seam

import (
	"errors"
	"mime"
	"net/http"
	"reflect"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Body is implemented (on the pointer) by the one handler parameter that
// consumes the request payload.
type Body interface {
	DecodeBody(data []byte, contentType string) error
}

// BodyMethod is optionally implemented by body types that imply a method
// other than POST.
type BodyMethod interface {
	BodyMethod() string
}

// BodyLimiter is optionally implemented by body types with a byte cap.
type BodyLimiter interface {
	BodyLimit() int64
}

// JSON is a JSON encoded value. As a parameter it requires an
// application/json payload; as a result it encodes Value.
type JSON[T any] struct {
	Value T
}

// DecodeBody implements Body.
func (j *JSON[T]) DecodeBody(data []byte, contentType string) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt != "application/json" {
		got := contentType
		if got == "" {
			got = "none"
		}
		return Externalf(http.StatusUnsupportedMediaType, "Expected Content-Type application/json, got %s", got).
			withKind(ErrBodyDecode)
	}
	if !gjson.ValidBytes(data) {
		return External(http.StatusBadRequest, "Request body is not valid JSON").withKind(ErrBodyDecode)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return External(http.StatusBadRequest, err.Error()).WithCause(err).withKind(ErrBodyDecode)
	}
	j.Value = v
	return nil
}

// Validate runs the SelfValidator of Value, if it has one.
func (j *JSON[T]) Validate() error {
	if sv, ok := any(&j.Value).(SelfValidator); ok {
		return sv.Validate()
	}
	if sv, ok := any(j.Value).(SelfValidator); ok {
		return sv.Validate()
	}
	return nil
}

// ResponseBody implements Responder.
func (j JSON[T]) ResponseBody() ([]byte, string, error) {
	b, err := json.Marshal(j.Value)
	if err != nil {
		return nil, "", err
	}
	return b, "application/json", nil
}

// DescribeShape implements Describer.
func (JSON[T]) DescribeShape() Info { return ShapeOf[T]() }

// Binary is an opaque payload of any content type.
type Binary struct {
	Bytes       []byte
	ContentType string
}

// DecodeBody implements Body.
func (b *Binary) DecodeBody(data []byte, contentType string) error {
	b.Bytes = data
	b.ContentType = contentType
	return nil
}

// ResponseBody implements Responder.
func (b Binary) ResponseBody() ([]byte, string, error) {
	ct := b.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return b.Bytes, ct, nil
}

// DescribeShape implements Describer.
func (Binary) DescribeShape() Info { return Describe("Binary data", Primitive(KindBinary)) }

// bodyType is what registration learns about a body type.
type bodyType struct {
	typ    reflect.Type
	method string
	limit  int64
	info   Info
}

func newBodyType[P any]() *bodyType {
	zero := any(new(P))
	bt := &bodyType{
		typ:    reflect.TypeFor[P](),
		method: http.MethodPost,
		info:   ShapeOf[P](),
	}
	if m, ok := zero.(BodyMethod); ok && m.BodyMethod() != "" {
		bt.method = m.BodyMethod()
	}
	if l, ok := zero.(BodyLimiter); ok {
		bt.limit = l.BodyLimit()
	}
	return bt
}

// decodeBody fills dst from the payload and runs its SelfValidator.
func decodeBody(dst Body, data []byte, contentType string) error {
	if err := dst.DecodeBody(data, contentType); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return Translate(err).withKind(ErrBodyDecode)
		}
		return External(http.StatusBadRequest, "Invalid request body").
			WithCause(err).
			withKind(ErrBodyDecode).
			withInternal(err.Error())
	}
	if err := validateBody(dst); err != nil {
		return err
	}
	return nil
}
