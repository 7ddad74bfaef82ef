package services

import (
	"context"

	"blogapi/internal/models"

	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserFields(ctx context.Context, id uuid.UUID, input *models.UpdateProfileRequest) (*models.User, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
}

type ArticleRepo interface {
	Create(ctx context.Context, a *models.Article, tags []models.Tag) error
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, int, error)
	ListPublishedByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Article, error)
	CountPublishedByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
	Update(ctx context.Context, a *models.Article, tags *[]models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)
	LikesCount(ctx context.Context, articleID uuid.UUID) (int, error)
	IsLiked(ctx context.Context, userID, articleID uuid.UUID) (bool, error)
	ToggleLike(ctx context.Context, userID, articleID uuid.UUID) (bool, int, error)
}

type CommentRepo interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListTopLevel(ctx context.Context, articleID uuid.UUID) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentIDs []uuid.UUID) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TagRepo interface {
	ListWithCounts(ctx context.Context) ([]models.TagWithCount, error)
}
