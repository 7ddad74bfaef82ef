package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Bio          *string   `json:"bio"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary — публичная «карточка» пользователя для вложения в статьи, комментарии и списки подписок.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Avatar   *string   `json:"avatar"`
	Bio      *string   `json:"bio,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
	}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"  example:"alice"`
	Email    string `json:"email"    validate:"required,email"     example:"a@x.com"`
	Password string `json:"password" validate:"required,min=6"     example:"pw1234"`
	Name     string `json:"name"     validate:"omitempty,max=100"  example:"Alice"`
}

// Trim убирает пробелы по краям до валидации.
func (r *RegisterRequest) Trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email" example:"a@x.com"`
	Password string `json:"password" validate:"required"       example:"pw1234"`
}

// UpdateProfileRequest — частичное обновление: nil означает «не менять».
func (r *LoginRequest) Trim() {
	r.Email = strings.TrimSpace(r.Email)
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"   validate:"omitempty,max=100"`
	Bio    *string `json:"bio,omitempty"    validate:"omitempty,max=500"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Me — текущий пользователь вместе со списками подписчиков и подписок.
type Me struct {
	*User
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
}

type Profile struct {
	*User
	Articles      []*Article    `json:"articles"`
	Followers     []UserSummary `json:"followers"`
	Following     []UserSummary `json:"following"`
	IsFollowing   bool          `json:"isFollowing"`
	ArticlesCount int           `json:"articlesCount"`
}

type FollowResult struct {
	Following bool   `json:"following"`
	Message   string `json:"message"`
}
