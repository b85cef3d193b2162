// Package apperrors defines the error kinds shared by the storage adapter and
// the request handlers, and how each kind maps onto an HTTP status.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the purpose of shaping a response.
type Kind int

const (
	// KindInternal is the zero value: anything not classified below.
	KindInternal Kind = iota
	// KindInvalidInput covers malformed JSON, missing or oversized fields and
	// missing path identifiers.
	KindInvalidInput
	// KindNotFound means the identifier has no matching record.
	KindNotFound
	// KindStorage means the key-value store call itself failed.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput builds a 400-class error with a client-facing message.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// NotFound builds a 404-class error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Storage wraps a failed store call. The client-facing message is the
// underlying error text, as the store reports it.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Err: err}
}

// KindOf reports the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// PublicMessage returns the text to send to a client for err. Storage and
// unclassified errors fall back to "Internal error" when they carry no text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil && e.Err.Error() != "" {
			return e.Err.Error()
		}
		return "Internal error"
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Internal error"
}
