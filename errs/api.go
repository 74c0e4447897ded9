package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error sentinel values
var (
	ErrInternal    = errors.New("internal server error")
	ErrConflict    = errors.New("resource conflict")
	ErrCORSBlocked = errors.New("request blocked by CORS policy")
)

type ApiErr struct {
	StatusCode int
	err        error
	Details    string // Additional details about the error
	Field      string // Field that caused the error (for validation errors)
	Cause      error  // The underlying cause of the error
}

// implements error interface. this allows us to pass an instance of ApiErr as an argument of type `error`
func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// GetFullError returns a recursive error message including all causes
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		var apiErr *ApiErr
		if errors.As(e.Cause, &apiErr) {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// this function allows us to do the following:
// err := &ApiErr{StatusCode: ..., err: someSentinelError}
// errors.Is(err, someSentinelError) ==> evaluates to true
func (e *ApiErr) Unwrap() error {
	return e.err
}

// StatusOf returns the HTTP status carried by err, or 500 for errors
// that are not an *ApiErr
func StatusOf(err error) int {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// NewInternalError hides cause from clients; it is only logged
func NewInternalError(message string, cause error) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: fmt.Errorf("%s: %w", message, ErrInternal), Cause: cause}
}

func NewConflictError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: fmt.Errorf("%s: %w", message, ErrConflict)}
}

// IsConflict also matches unique violations reported by the database
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    fmt.Sprintf("Origin '%s' is not allowed by CORS policy", origin),
	}
}
