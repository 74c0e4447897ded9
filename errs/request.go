package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken       = errors.New("missing access token")
	ErrExpiredToken       = errors.New("expired access token")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientRole   = errors.New("insufficient role")
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
)

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrExpiredToken,
		Details:    "Access token has expired",
		Field:      "authorization",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Invalid access token",
		Field:      "authorization",
	}
}

func NewInvalidCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidCredentials,
		Details:    "Unknown username or wrong password",
	}
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrInsufficientRole,
		Details:    fmt.Sprintf("Insufficient role. Required: %s", requiredRole),
		Field:      "authorization",
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}
