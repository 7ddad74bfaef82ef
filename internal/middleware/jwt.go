package middleware

import (
	"context"
	"net/http"
	"strings"

	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"
	"blogapi/internal/utils/helpers"

	"go.uber.org/zap"
)

// Authenticator проверяет bearer-токен и возвращает его владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireAuth пропускает только запросы с валидным токеном существующего пользователя.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.WithCtx(r.Context()).Warn("RequireAuth: отсутствует токен")
				helpers.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("RequireAuth: токен отклонён", zap.Error(err))
				helpers.Fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(reqctx.WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth определяет пользователя, если может; иначе запрос идёт дальше анонимно.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if user, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(reqctx.WithUser(r.Context(), user))
				} else {
					logger.WithCtx(r.Context()).Debug("OptionalAuth: токен проигнорирован", zap.Error(err))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
