package services

import (
	"context"
	"errors"
	"strings"

	"blogapi/internal/apperr"
	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const profileArticlesLimit = 10

var errUserNotFound = apperr.NotFound("User not found")

type UserService struct {
	users    UserRepo
	articles ArticleRepo
}

func NewUserService(users UserRepo, articles ArticleRepo) *UserService {
	return &UserService{users: users, articles: articles}
}

// Profile — публичная страница пользователя: последние статьи, подписчики, подписки.
func (s *UserService) Profile(ctx context.Context, username string, viewerID uuid.UUID) (*models.Profile, error) {
	logger.WithCtx(ctx).Debug("Профиль пользователя", zap.String("username", username))

	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	articles, err := s.articles.ListPublishedByAuthor(ctx, user.ID, profileArticlesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.articles.CountPublishedByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.users.ListFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.users.ListFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != uuid.Nil && viewerID != user.ID {
		if isFollowing, err = s.users.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}

	return &models.Profile{
		User:          user,
		Articles:      articles,
		Followers:     followers,
		Following:     following,
		IsFollowing:   isFollowing,
		ArticlesCount: count,
	}, nil
}

func (s *UserService) ToggleFollow(ctx context.Context, followerID uuid.UUID, username string) (*models.FollowResult, error) {
	log := logger.WithCtx(ctx)
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		log.Warn("Попытка подписаться на себя")
		return nil, apperr.Validation("Cannot follow yourself")
	}

	following, err := s.users.ToggleFollow(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	log.Info("Подписка переключена", zap.String("target", username), zap.Bool("following", following))

	if following {
		return &models.FollowResult{Following: true, Message: "Following user"}, nil
	}
	return &models.FollowResult{Following: false, Message: "Unfollowed user"}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	logger.WithCtx(ctx).Info("Обновление профиля")

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("Name cannot be empty")
		}
		req.Name = &name
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		req.Bio = &bio
	}
	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		req.Avatar = &avatar
	}

	user, err := s.users.UpdateUserFields(ctx, userID, &req)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errUserNotFound
	}
	return user, err
}

func (s *UserService) findByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errUserNotFound
	}
	return user, err
}
