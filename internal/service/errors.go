package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the presentation layer can map
// them to transport statuses without string matching. Storage errors stay
// wrapped and never leak through as domain kinds.
type ErrorKind int

const (
	// KindNotFound covers missing users/items/bookings and unauthorized
	// visibility deliberately reported as absence.
	KindNotFound ErrorKind = iota
	// KindBadRequest covers invalid state transitions and unknown state filters.
	KindBadRequest
	// KindNotAvailable covers items that cannot be booked.
	KindNotAvailable
	// KindOwnerConflict covers an owner attempting to book their own item.
	KindOwnerConflict
	// KindConflict covers uniqueness violations such as duplicate emails.
	KindConflict
)

// Error is a domain failure with a kind and a caller-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func BadRequestError(format string, args ...any) *Error {
	return newError(KindBadRequest, format, args...)
}

func NotAvailableError(format string, args ...any) *Error {
	return newError(KindNotAvailable, format, args...)
}

func OwnerConflictError(format string, args ...any) *Error {
	return newError(KindOwnerConflict, format, args...)
}

func ConflictError(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var domainErr *Error
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}
