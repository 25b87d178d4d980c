package dto

import (
	"time"

	"github.com/spec-kit/blog-platform/internal/domain"
)

// UserResponse is the password-stripped view of an account. The password
// hash never appears in any response shape.
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	IsAdmin        bool      `json:"isAdmin"`
	IsWriter       bool      `json:"isWriter"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUserResponse maps a domain user to its response view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		IsAdmin:        user.IsAdmin,
		IsWriter:       user.IsWriter,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// SessionResponse is the signup/signin body: the user plus the refresh
// token the client must hold on to.
type SessionResponse struct {
	UserResponse
	RefreshToken string `json:"refreshToken"`
}

// UpdateUserRequest payload for profile updates; empty fields are ignored.
type UpdateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture"`
}

// UserListResponse is the admin dashboard listing.
type UserListResponse struct {
	Users          []UserResponse `json:"users"`
	TotalUsers     int64          `json:"totalUsers"`
	LastMonthUsers int64          `json:"lastMonthUsers"`
}
