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

const articleSelect = `
	SELECT a.id, a.title, a.subtitle, a.content, a.slug, a.cover_image, a.reading_time,
	       a.published, a.published_at, a.views, a.author_id, a.created_at, a.updated_at,
	       u.id, u.username, u.name, u.avatar, u.bio
	FROM articles a
	JOIN users u ON u.id = a.author_id`

type ArticleRepository struct {
	db db.DB
}

func NewArticleRepository(conn db.DB) *ArticleRepository { return &ArticleRepository{db: conn} }

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	var author models.UserSummary
	err := row.Scan(
		&a.ID, &a.Title, &a.Subtitle, &a.Content, &a.Slug, &a.CoverImage, &a.ReadingTime,
		&a.Published, &a.PublishedAt, &a.Views, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
		&author.ID, &author.Username, &author.Name, &author.Avatar, &author.Bio,
	)
	if err != nil {
		return nil, mapError(err)
	}
	a.Author = &author
	a.Tags = []models.Tag{}
	return &a, nil
}

// Create сохраняет статью и её теги одной транзакцией. Занятый slug даёт ErrSlugTaken.
func (r *ArticleRepository) Create(ctx context.Context, a *models.Article, tags []models.Tag) error {
	logger.Log.Info("Создание статьи (repo)", zap.String("slug", a.Slug), zap.String("author_id", a.AuthorID.String()))
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
			INSERT INTO articles (id, title, subtitle, content, slug, cover_image, reading_time, published, published_at, author_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING views, created_at, updated_at`
		if err := tx.QueryRow(ctx, q,
			a.ID, a.Title, a.Subtitle, a.Content, a.Slug, a.CoverImage,
			a.ReadingTime, a.Published, a.PublishedAt, a.AuthorID,
		).Scan(&a.Views, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return err
		}

		saved, err := upsertTags(ctx, tx, tags)
		if err != nil {
			return err
		}
		if err := setArticleTags(ctx, tx, a.ID, saved); err != nil {
			return err
		}
		a.Tags = saved
		return nil
	})
	if err != nil {
		err = mapError(err)
		if err != ErrSlugTaken {
			logger.Log.Error("Ошибка создания статьи (repo)", zap.Error(err))
		}
		return err
	}
	return nil
}

// SlugExists проверяет занятость slug; excludeID позволяет не учитывать саму статью.
func (r *ArticleRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`
	var ok bool
	if err := r.db.QueryRow(ctx, q, slug, excludeID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	logger.Log.Debug("Получение статьи по slug (repo)", zap.String("slug", slug))
	a, err := scanArticle(r.db.QueryRow(ctx, articleSelect+` WHERE a.slug = $1`, slug))
	if err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, []*models.Article{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// List возвращает страницу статей и общее число подходящих под фильтр.
func (r *ArticleRepository) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, int, error) {
	where := []string{}
	args := []interface{}{}
	i := 1

	where = append(where, fmt.Sprintf("a.published = $%d", i))
	args = append(args, f.Published)
	i++

	// черновики видны только автору
	if !f.Published {
		where = append(where, fmt.Sprintf("a.author_id = $%d", i))
		args = append(args, f.ViewerID)
		i++
	}
	if f.Author != "" {
		where = append(where, fmt.Sprintf("u.username = $%d", i))
		args = append(args, f.Author)
		i++
	}
	if f.Tag != "" {
		where = append(where, fmt.Sprintf(`
			EXISTS (
				SELECT 1
				FROM article_tags at
				JOIN tags t ON t.id = at.tag_id
				WHERE at.article_id = a.id AND t.slug = $%d
			)`, i))
		args = append(args, f.Tag)
		i++
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf(`(a.title ILIKE $%d ESCAPE '\' OR a.content ILIKE $%d ESCAPE '\')`, i, i))
		args = append(args, "%"+EscapeLike(f.Search)+"%")
		i++
	}

	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	countSQL := `SELECT COUNT(*) FROM articles a JOIN users u ON u.id = a.author_id` + cond
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		logger.Log.Error("Ошибка подсчёта статей (repo)", zap.Error(err))
		return nil, 0, err
	}

	sql := articleSelect + cond + fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	list, err := r.queryArticles(ctx, sql, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения статей (repo)", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// ListPublishedByAuthor — последние опубликованные статьи автора для страницы профиля.
func (r *ArticleRepository) ListPublishedByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Article, error) {
	sql := articleSelect + ` WHERE a.author_id = $1 AND a.published = true ORDER BY a.created_at DESC LIMIT $2`
	return r.queryArticles(ctx, sql, authorID, limit)
}

func (r *ArticleRepository) CountPublishedByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles WHERE author_id = $1 AND published = true`, authorID).Scan(&n)
	return n, err
}

func (r *ArticleRepository) queryArticles(ctx context.Context, sql string, args ...interface{}) ([]*models.Article, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTags(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ArticleRepository) attachTags(ctx context.Context, list []*models.Article) error {
	ids := make([]uuid.UUID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	byArticle, err := tagsByArticle(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for _, a := range list {
		if tags, ok := byArticle[a.ID]; ok {
			a.Tags = tags
		}
	}
	return nil
}

// Update сохраняет все изменяемые поля статьи. tags == nil оставляет теги как есть.
func (r *ArticleRepository) Update(ctx context.Context, a *models.Article, tags *[]models.Tag) error {
	logger.Log.Info("Обновление статьи (repo)", zap.String("article_id", a.ID.String()))

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
			UPDATE articles
			SET title=$1,
			    subtitle=$2,
			    content=$3,
			    slug=$4,
			    cover_image=$5,
			    reading_time=$6,
			    published=$7,
			    published_at=$8,
			    updated_at=NOW()
			WHERE id=$9
			RETURNING updated_at`
		if err := tx.QueryRow(ctx, q,
			a.Title, a.Subtitle, a.Content, a.Slug, a.CoverImage,
			a.ReadingTime, a.Published, a.PublishedAt, a.ID,
		).Scan(&a.UpdatedAt); err != nil {
			return err
		}

		if tags == nil {
			return nil
		}
		saved, err := upsertTags(ctx, tx, *tags)
		if err != nil {
			return err
		}
		if err := setArticleTags(ctx, tx, a.ID, saved); err != nil {
			return err
		}
		a.Tags = saved
		return nil
	})
	if err != nil {
		err = mapError(err)
		if err != ErrSlugTaken {
			logger.Log.Error("Ошибка обновления статьи (repo)", zap.Error(err), zap.String("article_id", a.ID.String()))
		}
		return err
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Log.Info("Удаление статьи (repo)", zap.String("article_id", id.String()))
	tag, err := r.db.Exec(ctx, "DELETE FROM articles WHERE id=$1", id)
	if err != nil {
		logger.Log.Error("Ошибка удаления статьи (repo)", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews атомарно увеличивает счётчик и возвращает новое значение.
func (r *ArticleRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var views int
	err := r.db.QueryRow(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	return views, mapError(err)
}

func (r *ArticleRepository) LikesCount(ctx context.Context, articleID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE article_id = $1`, articleID).Scan(&n)
	return n, err
}

func (r *ArticleRepository) IsLiked(ctx context.Context, userID, articleID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND article_id = $2)`,
		userID, articleID,
	).Scan(&ok)
	return ok, err
}

// ToggleLike снимает лайк, если он был, иначе ставит. Возвращает состояние и число лайков после операции.
func (r *ArticleRepository) ToggleLike(ctx context.Context, userID, articleID uuid.UUID) (bool, int, error) {
	logger.Log.Info("Переключение лайка (repo)",
		zap.String("user_id", userID.String()),
		zap.String("article_id", articleID.String()))

	var liked bool
	var count int
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND article_id = $2`, userID, articleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO likes (user_id, article_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, articleID,
			); err != nil {
				return err
			}
			liked = true
		}
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE article_id = $1`, articleID).Scan(&count)
	})
	if err != nil {
		logger.Log.Error("Ошибка переключения лайка (repo)", zap.Error(err))
		return false, 0, err
	}
	return liked, count, nil
}

// EscapeLike экранирует спецсимволы шаблона LIKE.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
