package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogicum/models"
)

// adminEnv wires the admin API to stubs behind a real token check
type adminEnv struct {
	router     http.Handler
	token      string
	posts      *stubPosts
	categories *stubCategories
	locations  *stubLocations
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()
	tokens := newJWTTokens("secret", time.Hour, fixedClock)
	users := newTestUsers(t)
	env := &adminEnv{
		posts: &stubPosts{},
		categories: &stubCategories{byID: map[uint]*models.Category{
			1: {ID: 1, Title: "Travel", Slug: "travel", IsPublished: true},
			2: {ID: 2, Title: "Drafts", Slug: "drafts", IsPublished: false},
		}},
		locations: &stubLocations{byID: map[uint]*models.Location{
			1: {ID: 1, Name: "Lisbon", IsPublished: true},
		}},
	}
	handlers := &routeHandlers{
		publicHandler:   newPublicHandler(env.posts, newTestPages(t), newTestMetrics(), fixedClock, 5),
		authHandler:     newAuthHandler(users, tokens),
		categoryHandler: newCategoryHandler(env.categories),
		locationHandler: newLocationHandler(env.locations),
		postHandler:     newPostHandler(env.posts, users, env.categories, env.locations, fixedClock),
	}
	env.router = newTestRouter(handlers, newAuthMiddleware(tokens, users))

	token, _, err := tokens.Issue(1)
	require.NoError(t, err)
	env.token = token
	return env
}

func (e *adminEnv) do(t *testing.T, method, target, body string) (int, map[string]any) {
	t.Helper()
	rec := do(t, e.router, method, target, body, "Authorization", "Bearer "+e.token)
	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec.Code, decoded
}

func TestCreateCategory(t *testing.T) {
	env := newAdminEnv(t)

	t.Run("slug is derived from the title", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/admin/categories", `{"title":"City Walks","description":"On foot"}`)

		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "city-walks", body["slug"])
		assert.Equal(t, true, body["isPublished"])
	})

	t.Run("explicit unpublished", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/admin/categories", `{"title":"Hidden","slug":"hidden_1","isPublished":false}`)

		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "hidden_1", body["slug"])
		assert.Equal(t, false, body["isPublished"])
	})

	rejected := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "missing title", body: `{"slug":"x"}`, wantStatus: http.StatusBadRequest, wantField: "title"},
		{name: "bad slug", body: `{"title":"X","slug":"no spaces!"}`, wantStatus: http.StatusBadRequest, wantField: "slug"},
		{name: "duplicate slug", body: `{"title":"Travel"}`, wantStatus: http.StatusConflict},
		{name: "unknown field", body: `{"title":"X","colour":"red"}`, wantStatus: http.StatusBadRequest, wantField: "payload"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/admin/categories", tt.body)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, "error", body["status"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
			}
		})
	}
}

func TestUpdateCategoryReplacesRecord(t *testing.T) {
	env := newAdminEnv(t)

	status, body := env.do(t, http.MethodPut, "/admin/categories/2", `{"title":"Drafts","slug":"drafts","description":"Work in progress"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Work in progress", body["description"])
	assert.Equal(t, true, env.categories.byID[2].IsPublished)

	status, _ = env.do(t, http.MethodPut, "/admin/categories/2", `{"title":"Drafts","slug":"travel"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(t, http.MethodPut, "/admin/categories/9", `{"title":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteCategory(t *testing.T) {
	env := newAdminEnv(t)

	status, _ := env.do(t, http.MethodDelete, "/admin/categories/1", "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, []uint{1}, env.categories.deleted)

	status, _ = env.do(t, http.MethodDelete, "/admin/categories/1", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := env.do(t, http.MethodDelete, "/admin/categories/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "id", body["field"])
}

func TestLocations(t *testing.T) {
	env := newAdminEnv(t)

	status, body := env.do(t, http.MethodPost, "/admin/locations", `{"name":"  Porto "}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Porto", body["name"])

	status, _ = env.do(t, http.MethodPost, "/admin/locations", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/admin/locations", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])

	status, _ = env.do(t, http.MethodDelete, "/admin/locations/1", "")
	assert.Equal(t, http.StatusNoContent, status)
}
