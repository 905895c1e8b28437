package dto

import (
	"time"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string      `json:"name" binding:"required,notblank" example:"Alice"`
	Email    string      `json:"email" binding:"required,email" example:"alice@x.com"`
	Password string      `json:"password" binding:"required,max=72" example:"pw1"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=user admin" example:"user"`
	AdminKey string      `json:"adminKey,omitempty"`
}

// LoginRequest represents login credentials. Role, when given, must match the account.
type LoginRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=user admin"`
}

// UpdateProfileRequest changes the caller's own account. A new password needs the current one.
type UpdateProfileRequest struct {
	Name            *string `json:"name" binding:"omitempty,notblank"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Password        *string `json:"password" binding:"omitempty,notblank,max=72"`
	CurrentPassword string  `json:"currentPassword"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// MeResponse wraps the caller's own account.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// NewUserResponse strips credentials from a user.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
