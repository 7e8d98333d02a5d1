package httperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified failure that handlers can turn into a status code
// and a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newErr(kind Kind, code, message string) error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) error   { return newErr(KindValidation, code, message) }
func NotFoundErr(code, message string) error  { return newErr(KindNotFound, code, message) }
func Conflict(code, message string) error     { return newErr(KindConflict, code, message) }
func Forbidden(code, message string) error    { return newErr(KindForbidden, code, message) }
func UnauthorizedErr(code, message string) error {
	return newErr(KindUnauthorized, code, message)
}

// ErrBusiness is a business-rule violation surfaced as a 400.
func ErrBusiness(code string) error {
	return newErr(KindValidation, code, "")
}

func IsBusiness(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
