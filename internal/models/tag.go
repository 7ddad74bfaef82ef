package models

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type TagWithCount struct {
	Tag
	ArticlesCount int       `json:"articlesCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
