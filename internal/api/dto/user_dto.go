package dto

import (
	"time"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse public account view.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	Approved  bool        `json:"approved"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChangeRoleRequest payload for admin role assignment.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}
