package seam

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

// GenericMessage replaces the message of errors that are not external.
const GenericMessage = "Internal server error"

// Failure taxonomy. Every *Error returned by Handle matches exactly one of
// these with errors.Is.
var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrParamResolution  = errors.New("parameter resolution failed")
	ErrBodyTooLarge     = errors.New("body too large")
	ErrBodyDecode       = errors.New("body decode failed")
	ErrHandler          = errors.New("handler failed")
	ErrInternal         = errors.New("internal error")
	ErrCanceled         = errors.New("request canceled")
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Translator is implemented by domain errors that know their API form.
type Translator interface {
	ToAPIError() *Error
}

// Error is the uniform failure value of the dispatcher.
//
// InternalMessage is meant for logs and is always set. ExternalMessage is the
// only text that reaches the client; errors built with NewError carry
// GenericMessage there.
//
//nolint:errname // public name of the model
type Error struct {
	Code            int
	InternalMessage string
	ExternalMessage string
	Value           any

	kind  error
	cause error
}

// NewError returns an error whose message stays internal.
func NewError(code int, internal string) *Error {
	return &Error{Code: code, InternalMessage: internal, ExternalMessage: GenericMessage}
}

// Errorf is NewError with a formatted internal message.
func Errorf(code int, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// External returns an error whose message is shown to the client.
func External(code int, message string) *Error {
	return &Error{Code: code, InternalMessage: message, ExternalMessage: message}
}

// Externalf is External with a formatted message.
func Externalf(code int, format string, args ...any) *Error {
	return External(code, fmt.Sprintf(format, args...))
}

// ServerError is a 500 with a private message.
func ServerError(internal string) *Error {
	return NewError(http.StatusInternalServerError, internal)
}

// NotFound is the 404 returned for unknown routes and absent results.
func NotFound() *Error {
	return External(http.StatusNotFound, "Not found")
}

// NotAuthorized is a 403 explaining why access was refused.
func NotAuthorized(reason string) *Error {
	return External(http.StatusForbidden, "Not Authorized: "+reason)
}

// Error returns the internal message.
func (e *Error) Error() string {
	if e == nil {
		return "<nil *seam.Error>"
	}
	return e.InternalMessage
}

// StatusCode returns the HTTP status code.
func (e *Error) StatusCode() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches the error against its taxonomy sentinel.
func (e *Error) Is(target error) bool {
	return e != nil && e.kind != nil && e.kind == target
}

// WithExternalMessage returns a copy that shows message to the client.
func (e *Error) WithExternalMessage(message string) *Error {
	c := *e
	c.ExternalMessage = message
	return &c
}

// WithValue returns a copy carrying a structured payload for the client.
func (e *Error) WithValue(v any) *Error {
	c := *e
	c.Value = v
	return &c
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// withKind classifies e unless it is already classified.
func (e *Error) withKind(kind error) *Error {
	if e.kind == nil {
		e.kind = kind
	}
	return e
}

func (e *Error) withInternal(msg string) *Error {
	e.InternalMessage = msg
	return e
}

// Translate converts any error into a fresh *Error. A nil *Error stored in a
// non-nil error is a 500.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var out *Error
	var apiErr *Error
	var tr Translator
	var sc StatusCoder
	switch {
	case errors.As(err, &apiErr):
		if apiErr == nil {
			out = ServerError("nil *seam.Error returned as a non-nil error")
			break
		}
		c := *apiErr
		out = &c
	case errors.As(err, &tr):
		if converted := tr.ToAPIError(); converted != nil {
			c := *converted
			if c.cause == nil {
				c.cause = err
			}
			out = &c
		} else {
			out = ServerError(err.Error()).WithCause(err)
		}
	case errors.As(err, &sc):
		out = NewError(sc.StatusCode(), err.Error()).WithCause(err)
	default:
		out = ServerError(err.Error()).WithCause(err)
	}

	if out.Code < 100 || out.Code > 599 {
		out.Code = http.StatusInternalServerError
	}
	if out.InternalMessage == "" {
		out.InternalMessage = err.Error()
	}
	if out.ExternalMessage == "" {
		out.ExternalMessage = GenericMessage
	}
	return out
}

// ErrorBody is the JSON document written for a failed request.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ErrorResponse renders err for the wire. Only the external message and the
// value are included.
func ErrorResponse(err error) *Response {
	e := Translate(err)
	body, mErr := json.Marshal(ErrorBody{Code: e.Code, Message: e.ExternalMessage, Value: e.Value})
	if mErr != nil {
		// The value could not be encoded; drop it rather than leak anything.
		body, _ = json.Marshal(ErrorBody{Code: e.Code, Message: e.ExternalMessage}) //nolint:errchkjson // fixed shape
	}
	return &Response{
		Status: e.Code,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}
