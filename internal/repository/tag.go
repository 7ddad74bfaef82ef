package repository

import (
	"context"

	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// querier — общее у пула и транзакции, чтобы хелперы тегов работали внутри tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TagRepository struct {
	db db.DB
}

func NewTagRepository(conn db.DB) *TagRepository { return &TagRepository{db: conn} }

// ListWithCounts — все теги с числом опубликованных статей, популярные первыми.
func (r *TagRepository) ListWithCounts(ctx context.Context) ([]models.TagWithCount, error) {
	q := `
SELECT t.id, t.name, t.slug, t.created_at, COUNT(a.id) AS articles_count
FROM tags t
LEFT JOIN article_tags at ON at.tag_id = t.id
LEFT JOIN articles a ON a.id = at.article_id AND a.published = true
GROUP BY t.id, t.name, t.slug, t.created_at
ORDER BY articles_count DESC, t.name ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		logger.Log.Error("Ошибка получения тегов (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]models.TagWithCount, 0)
	for rows.Next() {
		var t models.TagWithCount
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.ArticlesCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// upsertTags находит или создаёт теги по slug. Порядок результата совпадает с входным.
func upsertTags(ctx context.Context, q querier, tags []models.Tag) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		var saved models.Tag
		err := q.QueryRow(ctx,
			`INSERT INTO tags (id, name, slug) VALUES ($1, $2, $3)
			 ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			 RETURNING id, name, slug`,
			uuid.New(), t.Name, t.Slug,
		).Scan(&saved.ID, &saved.Name, &saved.Slug)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, saved)
	}
	return out, nil
}

// setArticleTags заменяет набор тегов статьи ровно на переданный.
func setArticleTags(ctx context.Context, q querier, articleID uuid.UUID, tags []models.Tag) error {
	if _, err := q.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := q.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, t.ID,
		); err != nil {
			return err
		}
	}
	return nil
}

// tagsByArticle загружает теги пачки статей одним запросом.
func tagsByArticle(ctx context.Context, q querier, articleIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	out := make(map[uuid.UUID][]models.Tag, len(articleIDs))
	if len(articleIDs) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, `
		SELECT at.article_id, t.id, t.name, t.slug
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1)
		ORDER BY t.name`, articleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&articleID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out[articleID] = append(out[articleID], t)
	}
	return out, rows.Err()
}
