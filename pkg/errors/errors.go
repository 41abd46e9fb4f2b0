// Package errors carries typed error codes and the HTTP metadata the response
// layer renders them with.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// CodeDiscountInvalid marks a discount code that is not in the catalog.
	CodeDiscountInvalid Code = "DISCOUNT_CODE_INVALID"
	// CodeSuperseded marks a response that arrived after a newer request of the same kind.
	CodeSuperseded Code = "REQUEST_SUPERSEDED"
)

// Metadata is how a code is exposed over HTTP. Details are only rendered
// when DetailsAllowed is set.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:      {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:    {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:       {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:        {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:        {http.StatusConflict, false, "conflict detected", false},
	CodeStateConflict:   {http.StatusUnprocessableEntity, false, "state transition disallowed", true},
	CodeInternal:        {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:      {http.StatusServiceUnavailable, true, "dependency unavailable", true},
	CodeDiscountInvalid: {http.StatusUnprocessableEntity, false, "invalid discount code", true},
	CodeSuperseded:      {http.StatusConflict, true, "request superseded by a newer one", false},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error. A nil *Error reports CodeInternal.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap is New with a cause; a nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets details in place and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	for err != nil {
		typed := As(err)
		if typed == nil {
			return false
		}
		if typed.code == code {
			return true
		}
		err = typed.cause
	}
	return false
}
