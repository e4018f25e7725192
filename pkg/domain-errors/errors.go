// Package domainerrors provides coded errors for domain operations.
//
// Services return these so transports can map failures to responses without
// string matching. Stores return pkg/platform/sentinel errors instead;
// services translate at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Exactly one code per error.
type Code string

const (
	// CodeNotAuthorized means the caller lacks the role an operation requires.
	CodeNotAuthorized Code = "not_authorized"
	// CodeProfileExists means registration hit an identity that already has a record.
	CodeProfileExists Code = "profile_exists"
	// CodeNotFound means the operation targeted an identity with no record.
	CodeNotFound Code = "not_found"
	// CodeInvalidInput means a field exceeded its bound or an index was out of range.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotVerified means reputation accrual targeted an unverified profile.
	CodeNotVerified Code = "not_verified"
	// CodeAlreadyVerified means verification targeted an already-verified profile.
	CodeAlreadyVerified Code = "already_verified"
	// CodeMaxCertifications means the certification list is at capacity.
	CodeMaxCertifications Code = "max_certifications"
	// CodePaused means a mutating operation arrived while the platform is paused.
	CodePaused Code = "paused"
	// CodeZeroAddress means an admin transfer targeted the zero identity or the caller itself.
	CodeZeroAddress Code = "zero_address"
	// CodeInvalidReputation means a non-positive score increment.
	CodeInvalidReputation Code = "invalid_reputation"

	// CodeValidation covers malformed requests rejected before domain logic runs.
	CodeValidation Code = "validation"
	// CodeInvariantViolation marks a model constructor or transition rejecting bad state.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal covers infrastructure failures surfaced to callers.
	CodeInternal Code = "internal"
)

// Error carries a code, a message, and an optional cause.
type Error struct {
	code  Code
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the failure class.
func (e *Error) Code() Code {
	return e.code
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. The cause stays reachable via
// errors.Unwrap, but the outermost code wins for HasCode.
func Wrap(err error, code Code, msg string) error {
	return &Error{code: code, msg: msg, cause: err}
}

// HasCode reports whether the outermost coded error in err's chain carries code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Is is an alias of HasCode, reading better in test assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error in err's chain, or
// CodeInternal for uncoded errors. Nil yields the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}
