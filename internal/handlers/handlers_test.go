package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubArticles struct {
	lastFilter models.ArticleFilter
	lastViewer uuid.UUID
	lastReq    models.CreateArticleRequest
	err        error
}

func (s *stubArticles) Create(_ context.Context, authorID uuid.UUID, req models.CreateArticleRequest) (*models.Article, error) {
	s.lastViewer, s.lastReq = authorID, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Article{ID: uuid.New(), Title: req.Title, Slug: "hello-world", AuthorID: authorID}, nil
}

func (s *stubArticles) List(_ context.Context, f models.ArticleFilter) (*models.ArticleList, error) {
	s.lastFilter = f
	return &models.ArticleList{Articles: []*models.Article{}, Pagination: models.Pagination{Page: 1, Limit: 10}}, s.err
}

func (s *stubArticles) Get(_ context.Context, slug string, viewerID uuid.UUID) (*models.ArticleDetail, error) {
	s.lastViewer = viewerID
	if s.err != nil {
		return nil, s.err
	}
	return &models.ArticleDetail{Article: &models.Article{Slug: slug}, LikesCount: 3}, nil
}

func (s *stubArticles) Update(_ context.Context, slug string, viewerID uuid.UUID, _ models.UpdateArticleRequest) (*models.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Article{Slug: slug, AuthorID: viewerID}, nil
}

func (s *stubArticles) Delete(context.Context, string, uuid.UUID) error { return s.err }

func (s *stubArticles) ToggleLike(context.Context, string, uuid.UUID) (*models.LikeResult, error) {
	return &models.LikeResult{Liked: true, LikesCount: 1, Message: "Article liked"}, s.err
}

type stubComments struct {
	lastID uuid.UUID
}

func (s *stubComments) Create(_ context.Context, _ string, userID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	return &models.Comment{ID: uuid.New(), Content: req.Content, UserID: userID}, nil
}

func (s *stubComments) List(context.Context, string, uuid.UUID) ([]*models.Comment, error) {
	return []*models.Comment{{Content: "first"}}, nil
}

func (s *stubComments) Update(_ context.Context, id, _ uuid.UUID, req models.UpdateCommentRequest) (*models.Comment, error) {
	s.lastID = id
	return &models.Comment{ID: id, Content: req.Content}, nil
}

func (s *stubComments) Delete(_ context.Context, id, _ uuid.UUID) error {
	s.lastID = id
	return apperr.Forbidden("Not authorized to delete this comment")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var viewer = &models.User{ID: uuid.New(), Username: "alice"}

// do прогоняет запрос через роутер, чтобы заполнились mux.Vars.
func do(t *testing.T, method, pattern, target, body string, h http.HandlerFunc, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc(pattern, h).Methods(method)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(reqctx.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestArticleListParsesQuery(t *testing.T) {
	svc := &stubArticles{}
	h := NewArticleHandler(svc)

	rec := do(t, http.MethodGet, "/api/articles", "/api/articles?page=2&limit=5&tag=go&author=bob&search=%20pgx%20", "", h.List, viewer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ArticleFilter{
		Page: 2, Limit: 5, Tag: "go", Author: "bob", Search: "pgx", Published: true, ViewerID: viewer.ID,
	}, svc.lastFilter)
	assert.Equal(t, int64(10), gjson.Get(rec.Body.String(), "data.pagination.limit").Int())
	assert.True(t, gjson.Get(rec.Body.String(), "data.articles").IsArray())

	do(t, http.MethodGet, "/api/articles", "/api/articles?published=false&page=abc", "", h.List, nil)
	assert.False(t, svc.lastFilter.Published)
	assert.Equal(t, 0, svc.lastFilter.Page)
	assert.Equal(t, uuid.Nil, svc.lastFilter.ViewerID)

	do(t, http.MethodGet, "/api/articles", "/api/articles?published=maybe", "", h.List, nil)
	assert.True(t, svc.lastFilter.Published)
}

func TestArticleCreate(t *testing.T) {
	svc := &stubArticles{}
	h := NewArticleHandler(svc)

	rec := do(t, http.MethodPost, "/api/articles", "/api/articles",
		`{"title":"Hello World","content":"<p>x</p>","tags":["go"]}`, h.Create, viewer)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "hello-world", gjson.Get(body, "data.article.slug").String())
	assert.Equal(t, viewer.ID, svc.lastViewer)
	assert.Equal(t, []string{"go"}, svc.lastReq.Tags)

	rec = do(t, http.MethodPost, "/api/articles", "/api/articles", `{"content":"x"}`, h.Create, viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", gjson.Get(rec.Body.String(), "error").String())

	rec = do(t, http.MethodPost, "/api/articles", "/api/articles", `not json`, h.Create, viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", gjson.Get(rec.Body.String(), "error").String())
}

func TestArticleGetAndErrors(t *testing.T) {
	svc := &stubArticles{}
	h := NewArticleHandler(svc)

	rec := do(t, http.MethodGet, "/api/articles/{slug}", "/api/articles/hello", "", h.Get, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", gjson.Get(rec.Body.String(), "data.article.slug").String())
	assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "data.article.likesCount").Int())

	svc.err = apperr.NotFound("Article not found")
	rec = do(t, http.MethodGet, "/api/articles/{slug}", "/api/articles/nope", "", h.Get, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Article not found", gjson.Get(rec.Body.String(), "error").String())

	svc.err = errors.New("connection reset")
	rec = do(t, http.MethodGet, "/api/articles/{slug}", "/api/articles/x", "", h.Get, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", gjson.Get(rec.Body.String(), "error").String())
}

func TestArticleDeleteMessage(t *testing.T) {
	h := NewArticleHandler(&stubArticles{})
	rec := do(t, http.MethodDelete, "/api/articles/{slug}", "/api/articles/hello", "", h.Delete, viewer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Article deleted successfully", gjson.Get(rec.Body.String(), "message").String())
}

func TestArticleToggleLike(t *testing.T) {
	h := NewArticleHandler(&stubArticles{})
	rec := do(t, http.MethodPost, "/api/articles/{slug}/like", "/api/articles/hello/like", "", h.ToggleLike, viewer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "data.liked").Bool())
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "data.likesCount").Int())
}

func TestCommentHandlers(t *testing.T) {
	svc := &stubComments{}
	h := NewCommentHandler(svc)

	rec := do(t, http.MethodGet, "/api/comments/{slug}", "/api/comments/hello", "", h.List, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first", gjson.Get(rec.Body.String(), "data.comments.0.content").String())

	rec = do(t, http.MethodPost, "/api/comments/{slug}", "/api/comments/hello", `{"content":"Nice"}`, h.Create, viewer)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Nice", gjson.Get(rec.Body.String(), "data.comment.content").String())

	rec = do(t, http.MethodPost, "/api/comments/{slug}", "/api/comments/hello", `{"content":""}`, h.Create, viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", gjson.Get(rec.Body.String(), "error").String())

	id := uuid.New()
	rec = do(t, http.MethodPut, "/api/comments/{id}", "/api/comments/"+id.String(), `{"content":"edited"}`, h.Update, viewer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.lastID)

	rec = do(t, http.MethodPut, "/api/comments/{id}", "/api/comments/not-a-uuid", `{"content":"edited"}`, h.Update, viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id", gjson.Get(rec.Body.String(), "error").String())

	rec = do(t, http.MethodDelete, "/api/comments/{id}", "/api/comments/"+id.String(), "", h.Delete, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to delete this comment", gjson.Get(rec.Body.String(), "error").String())
}

func TestHealth(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/health", "/api/health", "", NewHealthHandler(stubPinger{}).Health, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", gjson.Get(rec.Body.String(), "data.status").String())
	assert.Equal(t, "connected", gjson.Get(rec.Body.String(), "data.database").String())

	rec = do(t, http.MethodGet, "/api/health", "/api/health", "", NewHealthHandler(stubPinger{err: errors.New("down")}).Health, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database connection failed", gjson.Get(rec.Body.String(), "error").String())
}
