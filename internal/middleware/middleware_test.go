package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

type stubAuth struct {
	users map[string]*models.User
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "deleted":
		return nil, apperr.Unauthenticated("User not found")
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, apperr.Unauthenticated("Invalid or expired token")
}

func whoami(w http.ResponseWriter, r *http.Request) {
	if u, ok := reqctx.GetUser(r.Context()); ok {
		_, _ = w.Write([]byte(u.Username))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	auth := stubAuth{users: map[string]*models.User{"good": {ID: uuid.New(), Username: "alice"}}}
	h := RequireAuth(auth)(http.HandlerFunc(whoami))

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"", http.StatusUnauthorized, "Authentication required"},
		{"Basic abc", http.StatusUnauthorized, "Authentication required"},
		{"Bearer bad", http.StatusUnauthorized, "Invalid or expired token"},
		{"Bearer deleted", http.StatusUnauthorized, "User not found"},
	}
	for _, tc := range cases {
		rec := serve(h, tc.header)
		assert.Equal(t, tc.status, rec.Code, tc.header)
		assert.Equal(t, tc.body, gjson.Get(rec.Body.String(), "error").String(), tc.header)
	}

	rec := serve(h, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	auth := stubAuth{users: map[string]*models.User{"good": {ID: uuid.New(), Username: "alice"}}}
	h := OptionalAuth(auth)(http.HandlerFunc(whoami))

	for header, want := range map[string]string{
		"":               "anonymous",
		"Bearer bad":     "anonymous",
		"Bearer deleted": "anonymous",
		"Bearer good":    "alice",
	} {
		rec := serve(h, header)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestRecovererReturnsJSON(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom: secret detail")
	}))

	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.False(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "Internal server error", gjson.Get(body, "error").String())
	assert.NotContains(t, body, "secret")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
	}))

	rec := serve(h, "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:2222").Code)
	rec := hit("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later", gjson.Get(rec.Body.String(), "error").String())

	// другой клиент считается отдельно
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2:1111").Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	rl.getLimiter("old")
	rl.visitors["old"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.getLimiter("fresh")

	rl.Cleanup()
	assert.NotContains(t, rl.visitors, "old")
	assert.Contains(t, rl.visitors, "fresh")
}
