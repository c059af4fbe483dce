package rental

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindConnection    Kind = "connection"
	KindSend          Kind = "send"
)

const (
	MessageInternalError  = "Internal server error"
	MessageInvalidRequest = "Invalid rental request"
)

// Error is returned by SubmitRental for every failure. Err carries a stack
// trace captured where the failure was detected.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{
		Kind: kind,
		Err:  pkgerrors.WithStack(err),
	}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	var rentalErr *Error
	if errors.As(err, &rentalErr) {
		return rentalErr.Kind
	}
	return ""
}

// StatusCode maps a submission error onto the HTTP status returned to the
// caller. Only rejected input is distinguished.
func StatusCode(err error) int {
	if KindOf(err) == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if KindOf(err) == KindValidation {
		return MessageInvalidRequest
	}
	return MessageInternalError
}
