package models

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID          uuid.UUID    `db:"id"           json:"id"`
	Title       string       `db:"title"        json:"title"`
	Subtitle    *string      `db:"subtitle"     json:"subtitle"`
	Content     string       `db:"content"      json:"content"`
	Slug        string       `db:"slug"         json:"slug"`
	CoverImage  *string      `db:"cover_image"  json:"coverImage"`
	ReadingTime int          `db:"reading_time" json:"readingTime"`
	Published   bool         `db:"published"    json:"published"`
	PublishedAt *time.Time   `db:"published_at" json:"publishedAt"`
	Views       int          `db:"views"        json:"views"`
	AuthorID    uuid.UUID    `db:"author_id"    json:"authorId"`
	Author      *UserSummary `db:"-"            json:"author,omitempty"`
	Tags        []Tag        `db:"-"            json:"tags"`
	CreatedAt   time.Time    `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at"   json:"updatedAt"`
}

// ArticleDetail — статья для страницы просмотра: счётчик лайков, ветка комментариев, лайкнул ли зритель.
type ArticleDetail struct {
	*Article
	IsLiked    bool       `json:"isLiked"`
	LikesCount int        `json:"likesCount"`
	Comments   []*Comment `json:"comments"`
}

// swagger:model CreateArticleRequest
type CreateArticleRequest struct {
	Title      string   `json:"title"      validate:"required,max=200"           example:"Hello World"`
	Subtitle   string   `json:"subtitle"   validate:"omitempty,max=300"          example:"First post"`
	Content    string   `json:"content"    validate:"required"                   example:"<p>Content</p>"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"              example:"https://example.com/cover.png"`
	Tags       []string `json:"tags"       validate:"max=10,dive,required,max=50" example:"go,backend"`
	Published  bool     `json:"published"`
}

// UpdateArticleRequest — nil-поля не меняются; Tags != nil полностью заменяет набор тегов.
type UpdateArticleRequest struct {
	Title      *string   `json:"title,omitempty"      validate:"omitempty,max=200"`
	Subtitle   *string   `json:"subtitle,omitempty"   validate:"omitempty,max=300"`
	Content    *string   `json:"content,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty" validate:"omitempty,url"`
	Tags       *[]string `json:"tags,omitempty"       validate:"omitempty,max=10,dive,required,max=50"`
	Published  *bool     `json:"published,omitempty"`
}

type ArticleFilter struct {
	Page      int
	Limit     int
	Tag       string
	Author    string
	Search    string
	Published bool
	ViewerID  uuid.UUID
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ArticleList struct {
	Articles   []*Article `json:"articles"`
	Pagination Pagination `json:"pagination"`
}

type LikeResult struct {
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likesCount"`
	Message    string `json:"message"`
}
