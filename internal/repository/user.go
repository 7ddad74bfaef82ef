package repository

import (
	"context"
	"fmt"
	"strings"

	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, password_hash, name, bio, avatar, created_at, updated_at`

type UserRepository struct {
	db db.DB
}

func NewUserRepository(conn db.DB) *UserRepository {
	return &UserRepository{db: conn}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Bio,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("username", user.Username), zap.String("email", user.Email))
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
	INSERT INTO users (id, username, email, password_hash, name, bio, avatar)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Bio,
		user.Avatar,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.Error(err))
		return mapError(err)
	}
	return nil
}

// ExistsByEmailOrUsername — быстрая проверка перед регистрацией; гонку закрывают уникальные индексы.
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	logger.Log.Debug("Проверка email/username на уникальность (repo)", zap.String("email", email), zap.String("username", username))
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email, username).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки email/username (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (repo)", zap.String("user_id", id.String()))
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по email (repo)", zap.String("email", email))
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по username (repo)", zap.String("username", username))
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// UpdateUserFields обновляет только переданные поля и возвращает свежую запись.
func (r *UserRepository) UpdateUserFields(ctx context.Context, id uuid.UUID, input *models.UpdateProfileRequest) (*models.User, error) {
	logger.Log.Info("Обновление профиля (repo)", zap.String("user_id", id.String()))
	query := `UPDATE users SET`
	var args []interface{}
	argNum := 1

	if input.Name != nil {
		query += fmt.Sprintf(" name = $%d,", argNum)
		args = append(args, *input.Name)
		argNum++
	}
	if input.Bio != nil {
		query += fmt.Sprintf(" bio = NULLIF($%d, ''),", argNum)
		args = append(args, *input.Bio)
		argNum++
	}
	if input.Avatar != nil {
		query += fmt.Sprintf(" avatar = NULLIF($%d, ''),", argNum)
		args = append(args, *input.Avatar)
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Debug("Нет полей для обновления профиля (repo)", zap.String("user_id", id.String()))
		return r.GetUserByID(ctx, id)
	}

	query = strings.TrimSuffix(query, ",") + fmt.Sprintf(", updated_at = NOW() WHERE id = $%d RETURNING %s", argNum, userColumns)
	args = append(args, id)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		logger.Log.Error("Ошибка обновления профиля (repo)", zap.Error(err), zap.String("user_id", id.String()))
	}
	return u, err
}

func (r *UserRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC`
	return r.listSummaries(ctx, query, userID)
}

func (r *UserRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC`
	return r.listSummaries(ctx, query, userID)
}

func (r *UserRepository) listSummaries(ctx context.Context, query string, userID uuid.UUID) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		logger.Log.Error("Ошибка получения подписок (repo)", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}
	defer rows.Close()

	list := make([]models.UserSummary, 0)
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Name, &s.Avatar); err != nil {
			logger.Log.Error("Ошибка сканирования подписки (repo)", zap.Error(err))
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *UserRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var ok bool
	err := r.db.QueryRow(ctx, query, followerID, followingID).Scan(&ok)
	return ok, err
}

// ToggleFollow снимает подписку, если она была, иначе создаёт. Возвращает итоговое состояние.
func (r *UserRepository) ToggleFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	logger.Log.Info("Переключение подписки (repo)",
		zap.String("follower_id", followerID.String()),
		zap.String("following_id", followingID.String()))

	var following bool
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
			followerID, followingID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			following = false
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			followerID, followingID)
		following = true
		return err
	})
	if err != nil {
		logger.Log.Error("Ошибка переключения подписки (repo)", zap.Error(err))
		return false, err
	}
	return following, nil
}
