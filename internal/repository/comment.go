package repository

import (
	"context"

	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const commentSelect = `
	SELECT c.id, c.content, c.article_id, c.user_id, c.parent_id, c.created_at, c.updated_at,
	       u.id, u.username, u.name, u.avatar
	FROM comments c
	JOIN users u ON u.id = c.user_id`

type CommentRepository struct {
	db db.DB
}

func NewCommentRepository(conn db.DB) *CommentRepository { return &CommentRepository{db: conn} }

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	var u models.UserSummary
	if err := row.Scan(
		&c.ID, &c.Content, &c.ArticleID, &c.UserID, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
		&u.ID, &u.Username, &u.Name, &u.Avatar,
	); err != nil {
		return nil, mapError(err)
	}
	c.User = &u
	c.Replies = []*models.Comment{}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	logger.Log.Info("Создание комментария (repo)",
		zap.String("article_id", c.ArticleID.String()),
		zap.String("user_id", c.UserID.String()))
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (id, content, article_id, user_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.Content, c.ArticleID, c.UserID, c.ParentID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания комментария (repo)", zap.Error(err))
		return mapError(err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
}

// ListTopLevel — корневые комментарии статьи, новые первыми.
func (r *CommentRepository) ListTopLevel(ctx context.Context, articleID uuid.UUID) ([]*models.Comment, error) {
	return r.query(ctx, commentSelect+`
		WHERE c.article_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC`, articleID)
}

// ListReplies — прямые ответы на указанные комментарии, старые первыми.
func (r *CommentRepository) ListReplies(ctx context.Context, parentIDs []uuid.UUID) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return []*models.Comment{}, nil
	}
	return r.query(ctx, commentSelect+`
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC`, parentIDs)
}

func (r *CommentRepository) query(ctx context.Context, sql string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения комментариев (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	logger.Log.Info("Обновление комментария (repo)", zap.String("comment_id", id.String()))
	tag, err := r.db.Exec(ctx, `UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2`, content, id)
	if err != nil {
		logger.Log.Error("Ошибка обновления комментария (repo)", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Log.Info("Удаление комментария (repo)", zap.String("comment_id", id.String()))
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления комментария (repo)", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
