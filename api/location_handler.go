package api

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type locationStore interface {
	FindAll(ctx context.Context) ([]models.Location, error)
	FindByID(ctx context.Context, id uint) (*models.Location, error)
	Add(ctx context.Context, location *models.Location) error
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id uint) error
}

type locationHandler struct {
	responder Responder
	logger    zerolog.Logger
	locations locationStore
}

func newLocationHandler(locations locationStore) locationHandler {
	logger := log.With().Str("handlerName", "locationHandler").Logger()

	return locationHandler{
		responder: NewResponder(logger),
		logger:    logger,
		locations: locations,
	}
}

type locationRequest struct {
	Name        string `json:"name"`
	IsPublished *bool  `json:"isPublished"`
}

func (req locationRequest) apply(location *models.Location) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errs.NewMissingRequiredFieldError("name")
	}
	if utf8.RuneCountInString(name) > titleMaxLength {
		return errs.NewInvalidFieldError("name", "must be at most 256 characters")
	}

	location.Name = name
	location.IsPublished = req.IsPublished == nil || *req.IsPublished
	return nil
}

type locationCollection struct {
	Locations []models.Location `json:"locations"`
	Total     int               `json:"total"`
}

func (h locationHandler) getAllLocations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := h.locations.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "locations", err))
			return
		}

		h.responder.WriteJSON(w, locationCollection{Locations: locations, Total: len(locations)})
	}
}

func (h locationHandler) getLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		location, err := h.locations.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "location", err))
			return
		}

		h.responder.WriteJSON(w, location)
	}
}

func (h locationHandler) createLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req locationRequest
		if err := decodeJSON(w, r, "location", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var location models.Location
		if err := req.apply(&location); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.locations.Add(r.Context(), &location); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "location", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, location)
	}
}

func (h locationHandler) updateLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req locationRequest
		if err := decodeJSON(w, r, "location", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		location, err := h.locations.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "location", err))
			return
		}
		if err := req.apply(location); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.locations.Update(r.Context(), location); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "location", err))
			return
		}

		h.responder.WriteJSON(w, location)
	}
}

func (h locationHandler) deleteLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.locations.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "location", err))
			return
		}

		h.logger.Info().Str("actor", actorName(r.Context())).Uint("locationID", id).Msg("location deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}
