package handlers

import (
	"context"
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/utils/helpers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Интерфейсы сервисов, которые нужны хендлерам. Реализации — в internal/services.

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.Me, error)
}

type ArticleService interface {
	Create(ctx context.Context, authorID uuid.UUID, req models.CreateArticleRequest) (*models.Article, error)
	List(ctx context.Context, f models.ArticleFilter) (*models.ArticleList, error)
	Get(ctx context.Context, slug string, viewerID uuid.UUID) (*models.ArticleDetail, error)
	Update(ctx context.Context, slug string, viewerID uuid.UUID, req models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, slug string, viewerID uuid.UUID) error
	ToggleLike(ctx context.Context, slug string, userID uuid.UUID) (*models.LikeResult, error)
}

type CommentService interface {
	Create(ctx context.Context, slug string, userID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error)
	List(ctx context.Context, slug string, viewerID uuid.UUID) ([]*models.Comment, error)
	Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type UserService interface {
	Profile(ctx context.Context, username string, viewerID uuid.UUID) (*models.Profile, error)
	ToggleFollow(ctx context.Context, followerID uuid.UUID, username string) (*models.FollowResult, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
}

type TagService interface {
	List(ctx context.Context) ([]models.TagWithCount, error)
}

// bind читает JSON-тело, применяет нормализацию (если передана) и проверяет теги validate.
func bind(w http.ResponseWriter, r *http.Request, dst interface{}, normalize ...func()) error {
	if err := helpers.DecodeJSON(w, r, dst); err != nil {
		return err
	}
	for _, fn := range normalize {
		fn()
	}
	return helpers.Validate(dst)
}

// uuidParam разбирает uuid из пути; кривой id — ошибка запроса, а не 404.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, "Invalid "+name, err)
	}
	return id, nil
}
