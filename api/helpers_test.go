package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func uintPtr(v uint) *uint { return &v }

func boolPtr(v bool) *bool { return &v }

func newTestPages(t *testing.T) *pages {
	t.Helper()
	p, err := loadPages(zerolog.Nop())
	require.NoError(t, err)
	return p
}

func newTestMetrics() *metrics {
	return newMetrics(prometheus.NewRegistry())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

// do sends a request through a router built like the production one
func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestRouter(handlers *routeHandlers, auth authMiddleware) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.NotFound(handlers.publicHandler.notFound())
	setupPublicRoutes(r, handlers)
	setupAdminRoutes(r, handlers, auth, []string{"https://admin.example.com"})
	return r
}

// stubPosts implements both the public reader and the admin store
type stubPosts struct {
	visible      []models.Post
	byID         map[uint]*models.Post
	category     *models.Category
	err          error
	lastQuery    database.VisibilityQuery
	lastFilter   database.PostFilter
	findVisCalls int
	added        []models.Post
	updated      []models.Post
	deleted      []uint
}

func (s *stubPosts) SelectVisible(_ context.Context, q database.VisibilityQuery) ([]models.Post, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	posts := s.visible
	if q.Limit > 0 && len(posts) > q.Limit {
		posts = posts[:q.Limit]
	}
	return posts, nil
}

func (s *stubPosts) FindVisible(_ context.Context, id uint, now time.Time) (*models.Post, error) {
	s.findVisCalls++
	s.lastQuery = database.VisibilityQuery{Now: now, PostID: id}
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.visible {
		if s.visible[i].ID == id {
			return &s.visible[i], nil
		}
	}
	return nil, errs.NewNotFound("post")
}

func (s *stubPosts) ListVisibleInCategory(_ context.Context, slug string, now time.Time) (*models.Category, []models.Post, error) {
	s.lastQuery = database.VisibilityQuery{Now: now, CategorySlug: slug}
	if s.err != nil {
		return nil, nil, s.err
	}
	if s.category == nil || s.category.Slug != slug {
		return nil, nil, errs.NewNotFound("category")
	}
	return s.category, s.visible, nil
}

func (s *stubPosts) FindAll(_ context.Context, filter database.PostFilter) ([]models.Post, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	var posts []models.Post
	for _, p := range s.byID {
		posts = append(posts, *p)
	}
	return posts, nil
}

func (s *stubPosts) FindByID(_ context.Context, id uint) (*models.Post, error) {
	if p, ok := s.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, errs.NewNotFound("post")
}

func (s *stubPosts) Add(_ context.Context, post *models.Post) error {
	if s.err != nil {
		return s.err
	}
	post.ID = uint(len(s.byID) + 1)
	s.store(post)
	s.added = append(s.added, *post)
	return nil
}

func (s *stubPosts) Update(_ context.Context, post *models.Post) error {
	if s.err != nil {
		return s.err
	}
	s.store(post)
	s.updated = append(s.updated, *post)
	return nil
}

func (s *stubPosts) Delete(_ context.Context, id uint) error {
	if _, ok := s.byID[id]; !ok {
		return errs.NewNotFound("post")
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPosts) store(post *models.Post) {
	if s.byID == nil {
		s.byID = map[uint]*models.Post{}
	}
	stored := *post
	stored.Category = &models.Category{ID: *post.CategoryID, Title: "Travel", Slug: "travel", IsPublished: true}
	s.byID[post.ID] = &stored
}

type stubUsers struct {
	users map[uint]*models.User
	err   error
}

func (s stubUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errs.NewNotFound("user")
}

func (s stubUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errs.NewNotFound("user")
}

type stubCategories struct {
	byID      map[uint]*models.Category
	takenSlug string
	deleted   []uint
}

func (s *stubCategories) FindAll(context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCategories) FindByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, errs.NewNotFound("category")
}

func (s *stubCategories) SlugTaken(_ context.Context, slug string, exceptID uint) (bool, error) {
	if slug == s.takenSlug {
		return true, nil
	}
	for id, c := range s.byID {
		if c.Slug == slug && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubCategories) Add(_ context.Context, category *models.Category) error {
	if s.byID == nil {
		s.byID = map[uint]*models.Category{}
	}
	category.ID = uint(len(s.byID) + 1)
	category.CreatedAt = fixedNow
	stored := *category
	s.byID[category.ID] = &stored
	return nil
}

func (s *stubCategories) Update(_ context.Context, category *models.Category) error {
	stored := *category
	s.byID[category.ID] = &stored
	return nil
}

func (s *stubCategories) Delete(_ context.Context, id uint) error {
	if _, ok := s.byID[id]; !ok {
		return errs.NewNotFound("category")
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubLocations struct {
	byID map[uint]*models.Location
}

func (s *stubLocations) FindAll(context.Context) ([]models.Location, error) {
	var out []models.Location
	for _, l := range s.byID {
		out = append(out, *l)
	}
	return out, nil
}

func (s *stubLocations) FindByID(_ context.Context, id uint) (*models.Location, error) {
	if l, ok := s.byID[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, errs.NewNotFound("location")
}

func (s *stubLocations) Add(_ context.Context, location *models.Location) error {
	if s.byID == nil {
		s.byID = map[uint]*models.Location{}
	}
	location.ID = uint(len(s.byID) + 1)
	stored := *location
	s.byID[location.ID] = &stored
	return nil
}

func (s *stubLocations) Update(_ context.Context, location *models.Location) error {
	stored := *location
	s.byID[location.ID] = &stored
	return nil
}

func (s *stubLocations) Delete(_ context.Context, id uint) error {
	if _, ok := s.byID[id]; !ok {
		return errs.NewNotFound("location")
	}
	delete(s.byID, id)
	return nil
}
