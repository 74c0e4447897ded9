package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/blogicum/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	status := errs.StatusOf(err)

	var apiErr *errs.ApiErr
	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, status, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if status >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Msg("request failed")
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	if apiErr.Cause != nil && status < http.StatusInternalServerError {
		response.Cause = apiErr.GetFullError()
	}

	r.WriteJSONStatus(w, status, response)
}

// WriteValidationError writes a standardized validation error response
func (r Responder) WriteValidationError(w http.ResponseWriter, field string, message string) {
	r.WriteError(w, errs.NewInvalidFieldError(field, message))
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
