package record

import (
	"errors"
	"fmt"
)

// Code categorizes an error from the store, ledger, or mutation engine.
type Code string

const (
	// CodeMissingField indicates a payload is missing a required field.
	CodeMissingField Code = "MISSING_FIELD"

	// CodeSchema indicates a payload or record fails shape validation
	// (wrong primitive type, illegal enum value, malformed structure).
	CodeSchema Code = "SCHEMA"

	// CodeNotFound indicates a referenced identifier does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeDuplicateID indicates an identifier already exists in its family.
	CodeDuplicateID Code = "DUPLICATE_ID"

	// CodeInvalidID indicates an identifier does not match its family format.
	CodeInvalidID Code = "INVALID_ID"

	// CodeClosedRelease indicates an attempt to bind a new version to a
	// release that is no longer planned.
	CodeClosedRelease Code = "CLOSED_RELEASE"

	// CodeInvalidRelease indicates a release reference that does not resolve.
	CodeInvalidRelease Code = "INVALID_RELEASE"

	// CodeTemporalOrder indicates a new version's release predates its
	// predecessor's release.
	CodeTemporalOrder Code = "TEMPORAL_ORDER"

	// CodeImmutableVersion indicates an attempt to modify a superseded
	// version or an established release binding.
	CodeImmutableVersion Code = "IMMUTABLE_VERSION"

	// CodeInvalidTransition indicates an illegal status transition.
	CodeInvalidTransition Code = "INVALID_TRANSITION"

	// CodeUnknownOperation indicates a mutation operation name outside the
	// fixed operation set.
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"

	// CodeValidationRejected indicates post-mutation full-store validation
	// found blocking violations; the mutation was discarded.
	CodeValidationRejected Code = "VALIDATION_REJECTED"

	// CodeCorruptStore indicates a canonical file failed to parse.
	CodeCorruptStore Code = "CORRUPT_STORE"

	// CodeIO indicates a storage-layer read or write failure.
	CodeIO Code = "IO_ERROR"
)

// Error is a structured error carrying a taxonomy code. The persisted store
// is guaranteed unchanged on every error path that returns one.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an underlying error with a taxonomy code.
func WrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Coder is implemented by error types outside this package that carry a
// taxonomy code (e.g. the validator's rejection error).
type Coder interface {
	ErrorCode() Code
}

// CodeOf extracts the taxonomy code from an error chain. Returns the empty
// code if the chain carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
