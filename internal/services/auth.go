package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogapi/internal/apperr"
	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/repository"
	"blogapi/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUserExists = apperr.Conflict("User with this email or username already exists")

type AuthService struct {
	repo     UserRepo
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo UserRepo, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	logger.Log.Info("Регистрация пользователя (service)", zap.String("username", username), zap.String("email", email))

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		logger.Log.Error("Ошибка проверки уникальности", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, errUserExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// параллельная регистрация с теми же данными
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errUserExists
		}
		return nil, err
	}

	token, err := utils.GenerateToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена", zap.Error(err))
		return nil, err
	}
	logger.Log.Info("Пользователь зарегистрирован", zap.String("user_id", user.ID.String()))
	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	logger.Log.Info("Попытка входа", zap.String("email", email))

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Log.Warn("Вход: пользователь не найден", zap.String("email", email))
		return nil, apperr.Unauthenticated("No account found with this email address")
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Log.Warn("Вход: неверный пароль", zap.String("user_id", user.ID.String()))
		return nil, apperr.Unauthenticated("Incorrect password. Please try again")
	}

	token, err := utils.GenerateToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Authenticate проверяет токен и загружает его владельца.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := utils.ParseToken(s.secret, token)
	if err != nil {
		logger.WithCtx(ctx).Debug("Невалидный токен", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindAuthentication, "Invalid or expired token", err)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthenticated("User not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.Me, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	followers, err := s.repo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.repo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Me{User: user, Followers: followers, Following: following}, nil
}
