// Package apperr defines the error taxonomy shared by services and handlers. Every error a
// service returns either is, or wraps, one of the sentinels below so the HTTP layer can
// turn it into a status/reason pair.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrApprovalPending        = errors.New("account pending approval")
	ErrAccountDeactivated     = errors.New("account deactivated")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrConflict               = errors.New("conflict")
	ErrCrypto                 = errors.New("token decryption failed")
	ErrUpstream               = errors.New("upstream provider failed")
	ErrConfig                 = errors.New("configuration error")
)

// Error attaches a caller-facing message to one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// New returns an error of the given kind with a caller-facing message.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting.
func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates cause with a kind and message.
func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Status maps an error to the HTTP status its kind implies.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrApprovalPending), errors.Is(err, ErrAccountDeactivated), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the message safe to show to clients. Unclassified errors never leak
// their text.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if Status(err) == http.StatusInternalServerError {
			return appErr.Kind.Error()
		}
		return appErr.Message
	}
	for _, kind := range []error{
		ErrAuthenticationRequired, ErrApprovalPending, ErrAccountDeactivated, ErrForbidden,
		ErrNotFound, ErrValidation, ErrConflict, ErrCrypto, ErrUpstream, ErrConfig,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
