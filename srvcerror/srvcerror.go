package srvcerror

import (
	"errors"
	"net/http"
)

// Kind separates caller mistakes from store failures so that API users can
// tell them apart even when both end up as a single message.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging
	kind       Kind

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		switch e.kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindDependency:
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

func NewValidation(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
		kind:      KindValidation,
	}
}

func NewDependency(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
		kind:      KindDependency,
	}
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsDependency reports whether err is (or wraps) a document store failure.
func IsDependency(err error) bool {
	return kindOf(err) == KindDependency
}

// HasCode reports whether err is (or wraps) a service error with the given code.
func HasCode(err error, code string) bool {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}

func kindOf(err error) Kind {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.kind
	}
	return KindInternal
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeStoreUnavailable = "store_unavailable"

// ErrStore wraps a failed document store call.
func ErrStore(err error) *Error {
	return NewDependency(
		ErrCodeStoreUnavailable,
		"document store request failed",
	).SetDebug(err)
}
