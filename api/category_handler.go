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

const titleMaxLength = 256

type categoryStore interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	Add(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryHandler struct {
	responder  Responder
	logger     zerolog.Logger
	categories categoryStore
}

func newCategoryHandler(categories categoryStore) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		categories: categories,
	}
}

// categoryRequest is the body of create and update. Update replaces the
// whole record, so omitted fields take the same defaults as on create.
type categoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	IsPublished *bool  `json:"isPublished"`
}

// apply validates req and copies it onto category. An empty slug is
// derived from the title.
func (req categoryRequest) apply(category *models.Category) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if utf8.RuneCountInString(title) > titleMaxLength {
		return errs.NewInvalidFieldError("title", "must be at most 256 characters")
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = models.Slugify(title)
		if slug == "" {
			return errs.NewMissingRequiredFieldError("slug")
		}
	}
	if !models.ValidSlug(slug) {
		return errs.NewInvalidFieldError("slug", "may contain only latin letters, digits, hyphens and underscores")
	}

	category.Title = title
	category.Description = req.Description
	category.Slug = slug
	category.IsPublished = req.IsPublished == nil || *req.IsPublished
	return nil
}

type categoryCollection struct {
	Categories []models.Category `json:"categories"`
	Total      int               `json:"total"`
}

// getAllCategories lists every category, published or not
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} categoryCollection
// @Router /admin/categories [get]
func (h categoryHandler) getAllCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categories.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "categories", err))
			return
		}

		h.responder.WriteJSON(w, categoryCollection{Categories: categories, Total: len(categories)})
	}
}

func (h categoryHandler) getCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categories.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "category", err))
			return
		}

		h.responder.WriteJSON(w, category)
	}
}

// createCategory
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body categoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Slug already in use"
// @Router /admin/categories [post]
func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decodeJSON(w, r, "category", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var category models.Category
		if err := req.apply(&category); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.ensureSlugFree(r.Context(), category.Slug, 0); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.categories.Add(r.Context(), &category); err != nil {
			h.responder.WriteError(w, storeError("create", &category, err))
			return
		}

		h.logger.Info().Str("actor", actorName(r.Context())).Uint("categoryID", category.ID).Str("slug", category.Slug).Msg("category created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, category)
	}
}

func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req categoryRequest
		if err := decodeJSON(w, r, "category", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categories.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "category", err))
			return
		}
		if err := req.apply(category); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.ensureSlugFree(r.Context(), category.Slug, category.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.categories.Update(r.Context(), category); err != nil {
			h.responder.WriteError(w, storeError("update", category, err))
			return
		}

		h.responder.WriteJSON(w, category)
	}
}

// deleteCategory removes the category; its posts stay, without a category
func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.categories.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "category", err))
			return
		}

		h.logger.Info().Str("actor", actorName(r.Context())).Uint("categoryID", id).Msg("category deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h categoryHandler) ensureSlugFree(ctx context.Context, slug string, exceptID uint) error {
	taken, err := h.categories.SlugTaken(ctx, slug, exceptID)
	if err != nil {
		return wrapDatabaseError("check", "category slug", err)
	}
	if taken {
		return slugConflict(slug)
	}
	return nil
}

func slugConflict(slug string) error {
	conflict := errs.NewConflictError("category slug " + slug + " is already in use")
	conflict.Field = "slug"
	return conflict
}

// storeError reports a unique violation that slipped past ensureSlugFree
// (two concurrent writes) the same way as a checked conflict
func storeError(operation string, category *models.Category, err error) error {
	dbErr := wrapDatabaseError(operation, "category", err)
	if errs.IsConflict(dbErr) {
		return slugConflict(category.Slug)
	}
	return dbErr
}
