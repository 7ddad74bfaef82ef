package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"blogapi/internal/models"
	"blogapi/internal/repository"

	"github.com/google/uuid"
)

// memStore — общее in-memory хранилище для фейковых репозиториев.
type memStore struct {
	clock    time.Time
	users    map[uuid.UUID]*models.User
	follows  map[[2]uuid.UUID]bool
	articles map[uuid.UUID]*models.Article
	tags     map[string]models.Tag // по slug
	artTags  map[uuid.UUID][]models.Tag
	likes    map[[2]uuid.UUID]bool
	comments map[uuid.UUID]*models.Comment

	// первые N вставок статьи падают с ErrSlugTaken (гонка за slug)
	slugRaces int
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[uuid.UUID]*models.User{},
		follows:  map[[2]uuid.UUID]bool{},
		articles: map[uuid.UUID]*models.Article{},
		tags:     map[string]models.Tag{},
		artTags:  map[uuid.UUID][]models.Tag{},
		likes:    map[[2]uuid.UUID]bool{},
		comments: map[uuid.UUID]*models.Comment{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(username string) *models.User {
	u := &models.User{ID: uuid.New(), Username: username, Email: username + "@x.com", Name: username, CreatedAt: m.tick()}
	m.users[u.ID] = u
	return u
}

// ---- users ----

type fakeUserRepo struct{ *memStore }

func (r fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	for _, other := range r.users {
		if other.Email == u.Email || other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r fakeUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeUserRepo) UpdateUserFields(_ context.Context, id uuid.UUID, in *models.UpdateProfileRequest) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Bio != nil {
		u.Bio = nilIfEmpty(*in.Bio)
	}
	if in.Avatar != nil {
		u.Avatar = nilIfEmpty(*in.Avatar)
	}
	cp := *u
	return &cp, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r fakeUserRepo) ListFollowers(_ context.Context, id uuid.UUID) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	for k := range r.follows {
		if k[1] == id {
			out = append(out, r.users[k[0]].Summary())
		}
	}
	return out, nil
}

func (r fakeUserRepo) ListFollowing(_ context.Context, id uuid.UUID) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	for k := range r.follows {
		if k[0] == id {
			out = append(out, r.users[k[1]].Summary())
		}
	}
	return out, nil
}

func (r fakeUserRepo) IsFollowing(_ context.Context, a, b uuid.UUID) (bool, error) {
	return r.follows[[2]uuid.UUID{a, b}], nil
}

func (r fakeUserRepo) ToggleFollow(_ context.Context, a, b uuid.UUID) (bool, error) {
	key := [2]uuid.UUID{a, b}
	if r.follows[key] {
		delete(r.follows, key)
		return false, nil
	}
	r.follows[key] = true
	return true, nil
}

// ---- articles ----

type fakeArticleRepo struct{ *memStore }

func (r fakeArticleRepo) slugOwner(slug string) (uuid.UUID, bool) {
	for id, a := range r.articles {
		if a.Slug == slug {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (r fakeArticleRepo) saveTags(articleID uuid.UUID, tags []models.Tag) []models.Tag {
	saved := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		existing, ok := r.tags[t.Slug]
		if !ok {
			existing = models.Tag{ID: uuid.New(), Name: t.Name, Slug: t.Slug}
			r.tags[t.Slug] = existing
		}
		saved = append(saved, existing)
	}
	r.artTags[articleID] = saved
	return saved
}

func (r fakeArticleRepo) Create(_ context.Context, a *models.Article, tags []models.Tag) error {
	if r.slugRaces > 0 {
		r.memStore.slugRaces--
		return repository.ErrSlugTaken
	}
	if _, taken := r.slugOwner(a.Slug); taken {
		return repository.ErrSlugTaken
	}
	a.ID = uuid.New()
	a.CreatedAt = r.tick()
	a.UpdatedAt = a.CreatedAt
	a.Tags = r.saveTags(a.ID, tags)
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r fakeArticleRepo) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	id, ok := r.slugOwner(slug)
	return ok && id != exclude, nil
}

func (r fakeArticleRepo) view(a *models.Article) *models.Article {
	cp := *a
	author := r.users[a.AuthorID].Summary()
	cp.Author = &author
	cp.Tags = append([]models.Tag{}, r.artTags[a.ID]...)
	return &cp
}

func (r fakeArticleRepo) GetBySlug(_ context.Context, slug string) (*models.Article, error) {
	id, ok := r.slugOwner(slug)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.view(r.articles[id]), nil
}

func (r fakeArticleRepo) List(_ context.Context, f models.ArticleFilter) ([]*models.Article, int, error) {
	var matched []*models.Article
	for _, a := range r.articles {
		if a.Published != f.Published {
			continue
		}
		if !f.Published && a.AuthorID != f.ViewerID {
			continue
		}
		if f.Author != "" && r.users[a.AuthorID].Username != f.Author {
			continue
		}
		if f.Tag != "" && !hasTag(r.artTags[a.ID], f.Tag) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Content), q) {
				continue
			}
		}
		matched = append(matched, r.view(a))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	from := (f.Page - 1) * f.Limit
	if from > total {
		from = total
	}
	to := from + f.Limit
	if to > total {
		to = total
	}
	return matched[from:to], total, nil
}

func hasTag(tags []models.Tag, slug string) bool {
	for _, t := range tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func (r fakeArticleRepo) ListPublishedByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Article, error) {
	u := r.users[authorID]
	list, _, err := r.List(ctx, models.ArticleFilter{Page: 1, Limit: limit, Author: u.Username, Published: true})
	return list, err
}

func (r fakeArticleRepo) CountPublishedByAuthor(_ context.Context, authorID uuid.UUID) (int, error) {
	n := 0
	for _, a := range r.articles {
		if a.AuthorID == authorID && a.Published {
			n++
		}
	}
	return n, nil
}

func (r fakeArticleRepo) Update(_ context.Context, a *models.Article, tags *[]models.Tag) error {
	if owner, taken := r.slugOwner(a.Slug); taken && owner != a.ID {
		return repository.ErrSlugTaken
	}
	if _, ok := r.articles[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = r.tick()
	if tags != nil {
		a.Tags = r.saveTags(a.ID, *tags)
	}
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r fakeArticleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

func (r fakeArticleRepo) IncrementViews(_ context.Context, id uuid.UUID) (int, error) {
	a, ok := r.articles[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	a.Views++
	return a.Views, nil
}

func (r fakeArticleRepo) LikesCount(_ context.Context, articleID uuid.UUID) (int, error) {
	n := 0
	for k := range r.likes {
		if k[1] == articleID {
			n++
		}
	}
	return n, nil
}

func (r fakeArticleRepo) IsLiked(_ context.Context, userID, articleID uuid.UUID) (bool, error) {
	return r.likes[[2]uuid.UUID{userID, articleID}], nil
}

func (r fakeArticleRepo) ToggleLike(ctx context.Context, userID, articleID uuid.UUID) (bool, int, error) {
	key := [2]uuid.UUID{userID, articleID}
	liked := !r.likes[key]
	if liked {
		r.likes[key] = true
	} else {
		delete(r.likes, key)
	}
	n, _ := r.LikesCount(ctx, articleID)
	return liked, n, nil
}

// ---- comments ----

type fakeCommentRepo struct{ *memStore }

func (r fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	c.ID = uuid.New()
	c.CreatedAt = r.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r fakeCommentRepo) view(c *models.Comment) *models.Comment {
	cp := *c
	u := r.users[c.UserID].Summary()
	cp.User = &u
	cp.Replies = []*models.Comment{}
	return &cp
}

func (r fakeCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.view(c), nil
}

func (r fakeCommentRepo) ListTopLevel(_ context.Context, articleID uuid.UUID) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range r.comments {
		if c.ArticleID == articleID && c.ParentID == nil {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeCommentRepo) ListReplies(_ context.Context, parentIDs []uuid.UUID) ([]*models.Comment, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range parentIDs {
		want[id] = true
	}
	var out []*models.Comment
	for _, c := range r.comments {
		if c.ParentID != nil && want[*c.ParentID] {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeCommentRepo) UpdateContent(_ context.Context, id uuid.UUID, content string) error {
	c, ok := r.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = r.tick()
	return nil
}

func (r fakeCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	for cid, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

type fakeTagRepo struct{ *memStore }

func (r fakeTagRepo) ListWithCounts(_ context.Context) ([]models.TagWithCount, error) {
	out := []models.TagWithCount{}
	for _, t := range r.tags {
		n := 0
		for aid, tags := range r.artTags {
			if a, ok := r.articles[aid]; ok && a.Published && hasTag(tags, t.Slug) {
				n++
			}
		}
		out = append(out, models.TagWithCount{Tag: t, ArticlesCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArticlesCount != out[j].ArticlesCount {
			return out[i].ArticlesCount > out[j].ArticlesCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
