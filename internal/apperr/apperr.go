// Package apperr classifies failures that cross the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure.
type Kind int

// Error kinds. Internal is the zero value so unclassified errors are
// never reported to clients in detail.
const (
	Internal Kind = iota
	Unauthorized
	Forbidden
	InvalidSite
	InvalidRequest
	EquipmentNotFound
	InsufficientStock
	DuplicateUser
	NotFound
)

var kindNames = map[Kind]string{
	Internal:          "internal",
	Unauthorized:      "unauthorized",
	Forbidden:         "forbidden",
	InvalidSite:       "invalid_site",
	InvalidRequest:    "invalid_request",
	EquipmentNotFound: "equipment_not_found",
	InsufficientStock: "insufficient_stock",
	DuplicateUser:     "duplicate_user",
	NotFound:          "not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind, keeping it for logging.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or Internal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to the HTTP status code reported to clients.
func Status(kind Kind) int {
	switch kind {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidSite, InvalidRequest, InsufficientStock:
		return http.StatusBadRequest
	case EquipmentNotFound, NotFound:
		return http.StatusNotFound
	case DuplicateUser:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a client. Internal errors
// never expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal error"
}
