package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID    `json:"id"`
	Content   string       `json:"content"`
	ArticleID uuid.UUID    `json:"articleId"`
	UserID    uuid.UUID    `json:"userId"`
	ParentID  *uuid.UUID   `json:"parentId"`
	User      *UserSummary `json:"user,omitempty"`
	Replies   []*Comment   `json:"replies"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (c *Comment) IsTopLevel() bool { return c.ParentID == nil }

// swagger:model CreateCommentRequest
type CreateCommentRequest struct {
	Content  string     `json:"content"  validate:"required,max=1000" example:"Nice post!"`
	ParentID *uuid.UUID `json:"parentId" validate:"omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
