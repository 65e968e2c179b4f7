// Package errors is the coded error type shared by every layer. Import it
// as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers and the HTTP layer. Values go
// over the wire so only append
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable // transient, retry may succeed
	ErrorCodeTooManyRequests
	ErrorCodeUnauthorized
	ErrorCodeInvalidArgument // well formed input the domain rejects
	ErrorCodeValidation      // input failing struct validation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodeFailedPrecondition // state does not allow the call yet, e.g. no model
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeUnavailable:        http.StatusServiceUnavailable,
	ErrorCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrorCodeUnauthorized:       http.StatusUnauthorized,
	ErrorCodeInvalidArgument:    http.StatusUnprocessableEntity,
	ErrorCodeValidation:         http.StatusBadRequest,
	ErrorCodeJSON:               http.StatusBadRequest,
	ErrorCodeNotFound:           http.StatusNotFound,
	ErrorCodeDuplicateKey:       http.StatusConflict,
	ErrorCodeFailedPrecondition: http.StatusConflict,
}

// HTTPStatusCode maps c to a status, 500 for anything unmapped
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a caller facing message and an optional cause.
// field names the offending input and op the failing operation
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	orig  error
}

// Wire is the serialisable view of an Error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig != nil:
		return e.msg + ": " + e.orig.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if any
func (e *Error) Op() string { return e.op }

// ToWire drops the cause, it never leaves the process
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error. Foreign errors become ErrorCodeUnknown with
// their text as message, nil becomes the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// Root returns the innermost cause
func Root(err error) error {
	for err != nil {
		next := stderrs.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err
}

// CodeOf returns err's code or ErrorCodeUnknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus maps any error to a status
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

func mutate(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// WithField returns a copy of err naming the offending field. Foreign errors
// pass through
func WithField(err error, field string) error {
	return mutate(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err tagged with op
func WithOp(err error, op string) error {
	return mutate(err, func(e *Error) { e.op = op })
}

// New returns an Error with code and msg
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with formatting
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap attaches code and msg to orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf is Wrap with formatting
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func DuplicateKeyf(format string, a ...any) error { return Newf(ErrorCodeDuplicateKey, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }

func FailedPreconditionf(format string, a ...any) error {
	return Newf(ErrorCodeFailedPrecondition, format, a...)
}
