package register

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailTaken is returned when the API rejects the account as a duplicate
	// or as a bad request.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidData is returned when the API or the form rejects a field.
	ErrInvalidData = errors.New("invalid registration data")
	// ErrNetwork covers transport failures and any other API status.
	ErrNetwork = errors.New("could not reach server")
)

// APIError is a failed API call. It matches one of the package sentinels with
// errors.Is.
type APIError struct {
	Status int
	// Detail is the server message, when it sent a plain string.
	Detail string
	Kind   error
	Cause  error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Cause != nil {
		return e.Kind.Error() + ": " + e.Cause.Error()
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusConflict, http.StatusBadRequest:
		return ErrEmailTaken
	case http.StatusUnprocessableEntity:
		return ErrInvalidData
	default:
		return ErrNetwork
	}
}
