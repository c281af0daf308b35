// Package apperr defines the outcome kinds every component reports and the
// error type that carries them up to the HTTP layer.
package apperr

import "errors"

type Kind int

const (
	Unknown Kind = iota
	InvalidArgument
	NotFound
	RateLimited
	StorageError
	MethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case RateLimited:
		return "RateLimited"
	case StorageError:
		return "StorageError"
	case MethodNotAllowed:
		return "MethodNotAllowed"
	default:
		return "Unknown"
	}
}

// Error is a failure with a client-facing Message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessageOf returns the client-facing message, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
