package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogapi/internal/apperr"
	"blogapi/internal/handlers"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

var alice = &models.User{ID: uuid.New(), Username: "alice"}

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "good" {
		return alice, nil
	}
	return nil, apperr.Unauthenticated("Invalid or expired token")
}

type stubUsers struct{ updated, profiled bool }

func (s *stubUsers) Profile(_ context.Context, username string, _ uuid.UUID) (*models.Profile, error) {
	s.profiled = true
	return &models.Profile{User: &models.User{Username: username}}, nil
}

func (s *stubUsers) ToggleFollow(context.Context, uuid.UUID, string) (*models.FollowResult, error) {
	return &models.FollowResult{}, nil
}

func (s *stubUsers) UpdateProfile(_ context.Context, id uuid.UUID, _ models.UpdateProfileRequest) (*models.User, error) {
	s.updated = true
	return &models.User{ID: id}, nil
}

type stubTags struct{}

func (stubTags) List(context.Context) ([]models.TagWithCount, error) {
	return []models.TagWithCount{{Tag: models.Tag{Name: "Go", Slug: "go"}, ArticlesCount: 2}}, nil
}

func newRouter(users *stubUsers) *mux.Router {
	r := mux.NewRouter()
	InitRoutes(r, Handlers{
		Auth:     handlers.NewAuthHandler(nil),
		Articles: handlers.NewArticleHandler(nil),
		Comments: handlers.NewCommentHandler(nil),
		Users:    handlers.NewUserHandler(users),
		Tags:     handlers.NewTagHandler(stubTags{}),
		Health:   handlers.NewHealthHandler(nil),
	}, Options{Auth: stubAuth{}})
	return r
}

func call(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUnknownRoute(t *testing.T) {
	rec := call(newRouter(&stubUsers{}), http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, gjson.Get(rec.Body.String(), "success").Bool())
	assert.Equal(t, "Route not found", gjson.Get(rec.Body.String(), "error").String())
}

func TestWrongMethod(t *testing.T) {
	rec := call(newRouter(&stubUsers{}), http.MethodPatch, "/api/tags", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", gjson.Get(rec.Body.String(), "error").String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter(&stubUsers{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/articles"},
		{http.MethodPut, "/api/articles/hello"},
		{http.MethodDelete, "/api/articles/hello"},
		{http.MethodPost, "/api/articles/hello/like"},
		{http.MethodPost, "/api/comments/hello"},
		{http.MethodPut, "/api/users/profile"},
		{http.MethodPost, "/api/users/bob/follow"},
	} {
		rec := call(r, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Authentication required", gjson.Get(rec.Body.String(), "error").String())
	}

	rec := call(r, http.MethodGet, "/api/auth/me", "bad", "")
	assert.Equal(t, "Invalid or expired token", gjson.Get(rec.Body.String(), "error").String())
}

func TestProfileUpdateIsNotAUsername(t *testing.T) {
	users := &stubUsers{}
	r := newRouter(users)

	rec := call(r, http.MethodPut, "/api/users/profile", "good", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, users.updated)
	assert.False(t, users.profiled)

	rec = call(r, http.MethodGet, "/api/users/bob", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, users.profiled)
}

func TestPublicTags(t *testing.T) {
	rec := call(newRouter(&stubUsers{}), http.MethodGet, "/api/tags", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "go", gjson.Get(rec.Body.String(), "data.tags.0.slug").String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
