package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/blogicum/errs"
)

// maxBodyBytes caps admin request bodies
const maxBodyBytes = 1 << 20

// idBits keeps parsed ids within the bigint primary key range
const idBits = 63

func parseIDParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, errs.NewMissingRequiredFieldError(name)
	}
	id, err := strconv.ParseUint(raw, 10, idBits)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidFieldError(name, "must be a positive integer")
	}
	return uint(id), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, payloadType string, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	return nil
}

// parseOptionalUint reads an optional positive integer query parameter
func parseOptionalUint(r *http.Request, name string) (*uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, idBits)
	if err != nil {
		return nil, errs.NewInvalidFieldError(name, "must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

func parseOptionalBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.NewInvalidFieldError(name, "must be true or false")
	}
	return &v, nil
}
