package services

import (
	"context"
	"errors"
	"html"
	"strings"
	"unicode/utf8"

	"blogapi/internal/apperr"
	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const maxCommentRunes = 1000

var errCommentNotFound = apperr.NotFound("Comment not found")

type CommentService struct {
	articles ArticleRepo
	comments CommentRepo
	policy   *bluemonday.Policy
}

func NewCommentService(articles ArticleRepo, comments CommentRepo) *CommentService {
	return &CommentService{articles: articles, comments: comments, policy: bluemonday.StrictPolicy()}
}

func (s *CommentService) Create(ctx context.Context, slug string, userID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание комментария", zap.String("slug", slug), zap.Bool("reply", req.ParentID != nil))

	article, err := s.visibleArticle(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	content, err := s.cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && parent.ArticleID != article.ID) {
			return nil, apperr.NotFound("Parent comment not found")
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsTopLevel() {
			return nil, apperr.Validation("Replies can only be one level deep")
		}
	}

	c := &models.Comment{
		Content:   content,
		ArticleID: article.ID,
		UserID:    userID,
		ParentID:  req.ParentID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info("Комментарий создан", zap.String("comment_id", c.ID.String()))
	return s.comments.GetByID(ctx, c.ID)
}

// List — ветка комментариев статьи: корневые новые первыми, ответы к ним старые первыми.
func (s *CommentService) List(ctx context.Context, slug string, viewerID uuid.UUID) ([]*models.Comment, error) {
	article, err := s.visibleArticle(ctx, slug, viewerID)
	if err != nil {
		return nil, err
	}
	return loadThread(ctx, s.comments, article.ID)
}

func (s *CommentService) Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateCommentRequest) (*models.Comment, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление комментария", zap.String("comment_id", id.String()))

	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		log.Warn("Попытка изменить чужой комментарий", zap.String("comment_id", id.String()))
		return nil, apperr.Forbidden("Not authorized to update this comment")
	}
	content, err := s.cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errCommentNotFound
		}
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление комментария", zap.String("comment_id", id.String()))

	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		log.Warn("Попытка удалить чужой комментарий", zap.String("comment_id", id.String()))
		return apperr.Forbidden("Not authorized to delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errCommentNotFound
		}
		return err
	}
	return nil
}

func (s *CommentService) find(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errCommentNotFound
	}
	return c, err
}

func (s *CommentService) visibleArticle(ctx context.Context, slug string, viewerID uuid.UUID) (*models.Article, error) {
	a, err := s.articles.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	if !a.Published && a.AuthorID != viewerID {
		return nil, errArticleNotPublic
	}
	return a, nil
}

// cleanContent хранит комментарий простым текстом: теги вырезаются, сущности раскрываются обратно.
// Экранирование — забота клиента при выводе.
func (s *CommentService) cleanContent(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) > maxCommentRunes {
		return "", apperr.Validation("Comment must be at most 1000 characters")
	}
	content := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
	if content == "" {
		return "", apperr.Validation("Comment content is required")
	}
	return content, nil
}

// loadThread собирает корневые комментарии статьи и раскрывает ровно один уровень ответов.
func loadThread(ctx context.Context, repo CommentRepo, articleID uuid.UUID) ([]*models.Comment, error) {
	top, err := repo.ListTopLevel(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []*models.Comment{}, nil
	}

	byID := make(map[uuid.UUID]*models.Comment, len(top))
	ids := make([]uuid.UUID, 0, len(top))
	for _, c := range top {
		c.Replies = []*models.Comment{}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	replies, err := repo.ListReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		if r.ParentID == nil {
			continue
		}
		if parent, ok := byID[*r.ParentID]; ok {
			r.Replies = []*models.Comment{}
			parent.Replies = append(parent.Replies, r)
		}
	}
	return top, nil
}
