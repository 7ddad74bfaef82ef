// internal/reqctx/reqctx.go
package reqctx

import (
	"context"

	"blogapi/internal/models"

	"github.com/google/uuid"
)

type key int

const (
	keyRequestID key = iota
	keyUser
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

// WithUser кладёт в контекст аутентифицированного пользователя (без хеша пароля).
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func GetUser(ctx context.Context) (*models.User, bool) {
	v, ok := ctx.Value(keyUser).(*models.User)
	return v, ok && v != nil
}

// GetUserID возвращает uuid.Nil для анонимного запроса.
func GetUserID(ctx context.Context) uuid.UUID {
	if u, ok := GetUser(ctx); ok {
		return u.ID
	}
	return uuid.Nil
}
