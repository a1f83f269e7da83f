package seam

import (
	"errors"
	"net/http"
)

// SelfValidator is implemented by body types that validate themselves once
// they have been decoded.
type SelfValidator interface {
	Validate() error
}

// validateBody runs v's SelfValidator. Plain errors become external 422s;
// errors that already carry an API form keep it.
func validateBody(v any) error {
	sv, ok := v.(SelfValidator)
	if !ok {
		return nil
	}
	err := sv.Validate()
	if err == nil {
		return nil
	}

	var apiErr *Error
	var tr Translator
	if errors.As(err, &apiErr) || errors.As(err, &tr) {
		return Translate(err).withKind(ErrBodyDecode)
	}
	return External(http.StatusUnprocessableEntity, err.Error()).WithCause(err).withKind(ErrBodyDecode)
}
