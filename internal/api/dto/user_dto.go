package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/case-service/internal/domain"
)

// LoginRequest payload for the login stub.
type LoginRequest struct {
	UserID string `json:"userId"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// NewUserSummary maps a domain user.
func NewUserSummary(user domain.User) UserSummary {
	return UserSummary{ID: user.ID, Name: user.Name, Role: user.Role}
}

// NewUserSummaryList maps users.
func NewUserSummaryList(users []domain.User) []UserSummary {
	return lo.Map(users, func(u domain.User, _ int) UserSummary {
		return NewUserSummary(u)
	})
}

func newUserSummaryPtr(user *domain.User) *UserSummary {
	if user == nil {
		return nil
	}
	summary := NewUserSummary(*user)
	return &summary
}
