package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

// visiblePostReader is the read side of the public site. Every method
// applies the visibility rule.
type visiblePostReader interface {
	SelectVisible(ctx context.Context, q database.VisibilityQuery) ([]models.Post, error)
	FindVisible(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	ListVisibleInCategory(ctx context.Context, slug string, now time.Time) (*models.Category, []models.Post, error)
}

type publicHandler struct {
	logger    zerolog.Logger
	pages     *pages
	posts     visiblePostReader
	metrics   *metrics
	now       func() time.Time
	indexSize int
}

func newPublicHandler(posts visiblePostReader, pages *pages, m *metrics, now func() time.Time, indexSize int) publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()
	if now == nil {
		now = time.Now
	}

	return publicHandler{
		logger:    logger,
		pages:     pages,
		posts:     posts,
		metrics:   m,
		now:       now,
		indexSize: indexSize,
	}
}

// index renders the newest visible posts
func (h publicHandler) index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.SelectVisible(r.Context(), database.VisibilityQuery{
			Now:   h.now(),
			Limit: h.indexSize,
		})
		if err != nil {
			h.fail(w, r, "index", err)
			return
		}

		h.pages.render(w, r, http.StatusOK, "index.page.html", pageData{
			Title: "Latest posts",
			Posts: posts,
		})
	}
}

// postDetail renders one visible post. Ids that do not parse, or do not
// fit a bigint key, are treated like ids that do not exist.
func (h publicHandler) postDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, idBits)
		if err != nil {
			h.fail(w, r, "post_detail", errs.NewNotFound("post"))
			return
		}

		post, err := h.posts.FindVisible(r.Context(), uint(id), h.now())
		if err != nil {
			h.fail(w, r, "post_detail", err)
			return
		}

		h.pages.render(w, r, http.StatusOK, "detail.page.html", pageData{
			Title: post.Title,
			Post:  post,
		})
	}
}

// categoryPosts renders every visible post of a published category
func (h publicHandler) categoryPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, posts, err := h.posts.ListVisibleInCategory(r.Context(), chi.URLParam(r, "slug"), h.now())
		if err != nil {
			h.fail(w, r, "category_posts", err)
			return
		}

		h.pages.render(w, r, http.StatusOK, "category.page.html", pageData{
			Title:    category.Title,
			Category: category,
			Posts:    posts,
		})
	}
}

func (h publicHandler) staticPage(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.pages.render(w, r, http.StatusOK, page, pageData{Title: title})
	}
}

func (h publicHandler) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.pages.render(w, r, http.StatusNotFound, "404.page.html", pageData{Title: "Page not found"})
	}
}

// fail renders the 404 page for NotFound and the 500 page for anything else
func (h publicHandler) fail(w http.ResponseWriter, r *http.Request, route string, err error) {
	if errs.IsNotFound(err) {
		h.metrics.recordNotFound(route)
		h.notFound()(w, r)
		return
	}

	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = &h.logger
	}
	logger.Error().Err(err).Str("route", route).Msg("error loading public page")
	h.pages.render(w, r, http.StatusInternalServerError, "500.page.html", pageData{Title: "Server error"})
}
