package api

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type postStore interface {
	FindAll(ctx context.Context, filter database.PostFilter) ([]models.Post, error)
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	Add(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Category, error)
}

type locationFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Location, error)
}

type postHandler struct {
	responder  Responder
	logger     zerolog.Logger
	posts      postStore
	users      userFinder
	categories categoryFinder
	locations  locationFinder
	now        func() time.Time
}

func newPostHandler(posts postStore, users userFinder, categories categoryFinder, locations locationFinder, now func() time.Time) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()
	if now == nil {
		now = time.Now
	}

	return postHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		posts:      posts,
		users:      users,
		categories: categories,
		locations:  locations,
		now:        now,
	}
}

// postRequest is the body of create and update. Update replaces the whole
// record: an omitted location is cleared, an omitted isPublished is true.
type postRequest struct {
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	PubDate     *time.Time `json:"pubDate"`
	AuthorID    *uint      `json:"authorId"`
	CategoryID  *uint      `json:"categoryId"`
	LocationID  *uint      `json:"locationId"`
	IsPublished *bool      `json:"isPublished"`
	ViewsCount  *int64     `json:"viewsCount"`
}

func (req postRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return errs.NewMissingRequiredFieldError("title")
	case strings.TrimSpace(req.Text) == "":
		return errs.NewMissingRequiredFieldError("text")
	case req.PubDate == nil || req.PubDate.IsZero():
		return errs.NewMissingRequiredFieldError("pubDate")
	case req.AuthorID == nil || *req.AuthorID == 0:
		return errs.NewMissingRequiredFieldError("authorId")
	case req.CategoryID == nil || *req.CategoryID == 0:
		return errs.NewMissingRequiredFieldError("categoryId")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Title)) > titleMaxLength {
		return errs.NewInvalidFieldError("title", "must be at most 256 characters")
	}
	if req.ViewsCount != nil && *req.ViewsCount < 0 {
		return errs.NewInvalidFieldError("viewsCount", "must not be negative")
	}
	// views_count is an integer column
	if req.ViewsCount != nil && *req.ViewsCount > math.MaxInt32 {
		return errs.NewInvalidFieldError("viewsCount", "must be at most 2147483647")
	}
	if req.LocationID != nil && *req.LocationID == 0 {
		return errs.NewInvalidFieldError("locationId", "must be a positive integer")
	}
	return nil
}

// postListItem flags whether the post is currently on the public site
type postListItem struct {
	models.Post
	Visible bool `json:"visible"`
}

type postCollection struct {
	Posts []postListItem `json:"posts"`
	Total int            `json:"total"`
}

// getAllPosts lists posts regardless of visibility
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param category query int false "Category ID"
// @Param author query int false "Author ID"
// @Param is_published query bool false "Publication flag"
// @Success 200 {object} postCollection
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Router /admin/posts [get]
func (h postHandler) getAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter database.PostFilter
		var err error
		if filter.CategoryID, err = parseOptionalUint(r, "category"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if filter.AuthorID, err = parseOptionalUint(r, "author"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if filter.IsPublished, err = parseOptionalBool(r, "is_published"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		posts, err := h.posts.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "posts", err))
			return
		}

		now := h.now()
		items := make([]postListItem, 0, len(posts))
		for _, post := range posts {
			items = append(items, postListItem{Post: post, Visible: post.IsVisibleAt(now)})
		}

		h.responder.WriteJSON(w, postCollection{Posts: items, Total: len(items)})
	}
}

func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}

		h.responder.WriteJSON(w, postListItem{Post: *post, Visible: post.IsVisibleAt(h.now())})
	}
}

// createPost
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Param request body postRequest true "Post"
// @Success 201 {object} postListItem
// @Failure 400 {object} ErrorResponse "Validation failed or unknown author, category or location"
// @Router /admin/posts [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postRequest
		if err := decodeJSON(w, r, "post", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var post models.Post
		if err := h.apply(r.Context(), req, &post); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "post", err))
			return
		}

		h.logger.Info().Str("actor", actorName(r.Context())).Uint("postID", post.ID).Msg("post created")
		h.writeStored(w, r, http.StatusCreated, post.ID)
	}
}

func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req postRequest
		if err := decodeJSON(w, r, "post", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if err := h.apply(r.Context(), req, post); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Update(r.Context(), post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}

		h.writeStored(w, r, http.StatusOK, post.ID)
	}
}

func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}

		h.logger.Info().Str("actor", actorName(r.Context())).Uint("postID", id).Msg("post deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// apply validates req, checks that referenced records exist and copies
// the result onto post
func (h postHandler) apply(ctx context.Context, req postRequest, post *models.Post) error {
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := h.users.FindByID(ctx, *req.AuthorID); err != nil {
		return referenceError("authorId", "author", err)
	}
	if _, err := h.categories.FindByID(ctx, *req.CategoryID); err != nil {
		return referenceError("categoryId", "category", err)
	}
	if req.LocationID != nil {
		if _, err := h.locations.FindByID(ctx, *req.LocationID); err != nil {
			return referenceError("locationId", "location", err)
		}
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Text = req.Text
	post.PubDate = *req.PubDate
	post.AuthorID = *req.AuthorID
	post.CategoryID = req.CategoryID
	post.LocationID = req.LocationID
	post.IsPublished = req.IsPublished == nil || *req.IsPublished
	if req.ViewsCount != nil {
		post.ViewsCount = uint(*req.ViewsCount)
	}

	// Relations are reloaded after the write
	post.Author, post.Category, post.Location = nil, nil, nil
	return nil
}

// writeStored reloads the post with its relations and writes it
func (h postHandler) writeStored(w http.ResponseWriter, r *http.Request, status int, id uint) {
	post, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
		return
	}
	h.responder.WriteJSONStatus(w, status, postListItem{Post: *post, Visible: post.IsVisibleAt(h.now())})
}

// referenceError turns a missing referenced record into a 400 on field
func referenceError(field, entity string, err error) error {
	if errs.IsNotFound(err) {
		return errs.NewInvalidFieldError(field, entity+" does not exist")
	}
	return wrapDatabaseError("find", entity, err)
}
