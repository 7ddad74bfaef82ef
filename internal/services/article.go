package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"blogapi/internal/apperr"
	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxTitleRunes    = 200
	maxSubtitleRunes = 300

	// (page-1)*limit не должен переполняться
	maxPage = math.MaxInt32 / maxPageLimit
)

var (
	errArticleNotFound  = apperr.NotFound("Article not found")
	errArticleNotPublic = apperr.Forbidden("Article is not published")
	errSlugConflict     = apperr.Conflict("Article with this slug already exists, please retry")
)

type ArticleService struct {
	articles ArticleRepo
	comments CommentRepo
	policy   *bluemonday.Policy
	now      func() time.Time
}

func NewArticleService(articles ArticleRepo, comments CommentRepo) *ArticleService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &ArticleService{articles: articles, comments: comments, policy: p, now: time.Now}
}

func (s *ArticleService) Create(ctx context.Context, authorID uuid.UUID, req models.CreateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	title := strings.TrimSpace(req.Title)
	log.Info("Создание статьи",
		zap.String("title", title),
		zap.Bool("published", req.Published),
		zap.Int("tags_count", len(req.Tags)),
	)

	if title == "" {
		return nil, apperr.Validation("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return nil, apperr.Validation("Title must be at most 200 characters")
	}
	content := s.policy.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("Content is required")
	}
	subtitle := optionalText(req.Subtitle)
	if subtitle != nil && utf8.RuneCountInString(*subtitle) > maxSubtitleRunes {
		return nil, apperr.Validation("Subtitle must be at most 300 characters")
	}
	tags := NormalizeTags(req.Tags)
	if msg := validateTags(tags); msg != "" {
		return nil, apperr.Validation(msg)
	}

	base := Slugify(title)
	slug, err := s.freeSlug(ctx, base, uuid.Nil)
	if err != nil {
		return nil, err
	}

	a := &models.Article{
		Title:       title,
		Subtitle:    subtitle,
		Content:     content,
		Slug:        slug,
		CoverImage:  optionalText(req.CoverImage),
		ReadingTime: ReadingTime(content),
		Published:   req.Published,
		AuthorID:    authorID,
	}
	if a.Published {
		now := s.now()
		a.PublishedAt = &now
	}

	err = s.articles.Create(ctx, a, tags)
	if errors.Is(err, repository.ErrSlugTaken) {
		// slug заняли между проверкой и вставкой
		log.Warn("Коллизия slug, повтор с меткой времени", zap.String("slug", a.Slug))
		a.ID = uuid.Nil
		if a.Slug, err = s.stampedSlug(ctx, base, uuid.Nil); err != nil {
			return nil, err
		}
		err = s.articles.Create(ctx, a, tags)
	}
	if err != nil {
		return nil, slugConflict(err)
	}

	log.Info("Статья создана", zap.String("article_id", a.ID.String()), zap.String("slug", a.Slug))
	return s.articles.GetBySlug(ctx, a.Slug)
}

// freeSlug возвращает base, если он свободен, иначе base-<ms>.
func (s *ArticleService) freeSlug(ctx context.Context, base string, self uuid.UUID) (string, error) {
	taken, err := s.articles.SlugExists(ctx, base, self)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return s.stampedSlug(ctx, base, self)
}

// stampedSlug подбирает свободный base-<ms>; при совпадении миллисекунд сдвигает метку.
func (s *ArticleService) stampedSlug(ctx context.Context, base string, self uuid.UUID) (string, error) {
	ms := s.now().UnixMilli()
	for i := int64(0); i < maxSlugAttempts; i++ {
		candidate := stampSlug(base, ms+i)
		taken, err := s.articles.SlugExists(ctx, candidate, self)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errSlugConflict
}

func slugConflict(err error) error {
	if errors.Is(err, repository.ErrSlugTaken) {
		return errSlugConflict
	}
	return err
}

func (s *ArticleService) List(ctx context.Context, f models.ArticleFilter) (*models.ArticleList, error) {
	f.Page, f.Limit = normalizePaging(f.Page, f.Limit)
	logger.WithCtx(ctx).Debug("Список статей",
		zap.Int("page", f.Page),
		zap.Int("limit", f.Limit),
		zap.String("tag", f.Tag),
		zap.String("author", f.Author),
		zap.Bool("published", f.Published),
	)

	out := &models.ArticleList{
		Articles:   []*models.Article{},
		Pagination: models.Pagination{Page: f.Page, Limit: f.Limit},
	}
	// у анонима нет черновиков
	if !f.Published && f.ViewerID == uuid.Nil {
		return out, nil
	}

	list, total, err := s.articles.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out.Articles = list
	out.Pagination.Total = total
	out.Pagination.Pages = (total + f.Limit - 1) / f.Limit
	return out, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// Get отдаёт статью со счётчиком лайков и веткой комментариев. Каждый успешный просмотр увеличивает views.
func (s *ArticleService) Get(ctx context.Context, slug string, viewerID uuid.UUID) (*models.ArticleDetail, error) {
	a, err := s.getVisible(ctx, slug, viewerID)
	if err != nil {
		return nil, err
	}

	likes, err := s.articles.LikesCount(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if viewerID != uuid.Nil {
		if liked, err = s.articles.IsLiked(ctx, viewerID, a.ID); err != nil {
			return nil, err
		}
	}
	thread, err := loadThread(ctx, s.comments, a.ID)
	if err != nil {
		return nil, err
	}

	views, err := s.articles.IncrementViews(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Views = views

	return &models.ArticleDetail{
		Article:    a,
		IsLiked:    liked,
		LikesCount: likes,
		Comments:   thread,
	}, nil
}

// getVisible: черновик видит только автор.
func (s *ArticleService) getVisible(ctx context.Context, slug string, viewerID uuid.UUID) (*models.Article, error) {
	a, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !a.Published && a.AuthorID != viewerID {
		return nil, errArticleNotPublic
	}
	return a, nil
}

func (s *ArticleService) find(ctx context.Context, slug string) (*models.Article, error) {
	a, err := s.articles.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errArticleNotFound
	}
	return a, err
}

func (s *ArticleService) Update(ctx context.Context, slug string, viewerID uuid.UUID, req models.UpdateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление статьи", zap.String("slug", slug))

	a, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != viewerID {
		log.Warn("Попытка изменить чужую статью", zap.String("slug", slug))
		return nil, apperr.Forbidden("Not authorized to update this article")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxTitleRunes {
			return nil, apperr.Validation("Title must be at most 200 characters")
		}
		if title != a.Title {
			if a.Slug, err = s.freeSlug(ctx, Slugify(title), a.ID); err != nil {
				return nil, err
			}
		}
		a.Title = title
	}
	if req.Subtitle != nil {
		a.Subtitle = optionalText(*req.Subtitle)
		if a.Subtitle != nil && utf8.RuneCountInString(*a.Subtitle) > maxSubtitleRunes {
			return nil, apperr.Validation("Subtitle must be at most 300 characters")
		}
	}
	if req.Content != nil {
		content := s.policy.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			return nil, apperr.Validation("Content cannot be empty")
		}
		a.Content = content
		a.ReadingTime = ReadingTime(content)
	}
	if req.CoverImage != nil {
		a.CoverImage = optionalText(*req.CoverImage)
	}
	if req.Published != nil {
		a.Published = *req.Published
		if a.Published && a.PublishedAt == nil {
			now := s.now()
			a.PublishedAt = &now
		}
	}

	var tags *[]models.Tag
	if req.Tags != nil {
		normalized := NormalizeTags(*req.Tags)
		if msg := validateTags(normalized); msg != "" {
			return nil, apperr.Validation(msg)
		}
		tags = &normalized
	}

	err = s.articles.Update(ctx, a, tags)
	if errors.Is(err, repository.ErrSlugTaken) {
		log.Warn("Коллизия slug при обновлении, повтор", zap.String("slug", a.Slug))
		if a.Slug, err = s.stampedSlug(ctx, Slugify(a.Title), a.ID); err != nil {
			return nil, err
		}
		err = s.articles.Update(ctx, a, tags)
	}
	if err != nil {
		return nil, slugConflict(err)
	}

	return s.articles.GetBySlug(ctx, a.Slug)
}

func (s *ArticleService) Delete(ctx context.Context, slug string, viewerID uuid.UUID) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление статьи", zap.String("slug", slug))

	a, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if a.AuthorID != viewerID {
		log.Warn("Попытка удалить чужую статью", zap.String("slug", slug))
		return apperr.Forbidden("Not authorized to delete this article")
	}
	if err := s.articles.Delete(ctx, a.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errArticleNotFound
		}
		return err
	}
	return nil
}

func (s *ArticleService) ToggleLike(ctx context.Context, slug string, userID uuid.UUID) (*models.LikeResult, error) {
	a, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	liked, count, err := s.articles.ToggleLike(ctx, userID, a.ID)
	if err != nil {
		return nil, err
	}

	res := &models.LikeResult{Liked: liked, LikesCount: count, Message: "Article unliked"}
	if liked {
		res.Message = "Article liked"
	}
	logger.WithCtx(ctx).Info("Лайк переключён", zap.String("slug", slug), zap.Bool("liked", liked))
	return res, nil
}

// optionalText: пустая строка после обрезки пробелов хранится как NULL.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
