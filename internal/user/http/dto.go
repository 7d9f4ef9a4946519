package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Email   string `form:"email"`
	Name    string `form:"name"`
	Role    string `form:"role" binding:"omitempty,oneof=GUEST OWNER ADMIN"`
	Enabled *bool  `form:"enabled"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=name email created_at"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	Role                   auth.Role  `json:"role"`
	Enabled                bool       `json:"enabled"`
	OwnerApplicationStatus string     `json:"owner_application_status"`
	CreatedAt              time.Time  `json:"created_at"`
	LastLoginAt            *time.Time `json:"last_login_at"`
}

// UserTag is a brief representation of a user.
type UserTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	var lastLoginAt *time.Time
	if u.LastLoginAt != nil {
		ll := *u.LastLoginAt
		lastLoginAt = &ll
	}

	return UserResponse{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		Role:                   u.Role,
		Enabled:                u.Enabled,
		OwnerApplicationStatus: string(u.OwnerApplicationStatus),
		CreatedAt:              u.CreatedAt,
		LastLoginAt:            lastLoginAt,
	}
}

// RegisterRequest defines the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,notblank"`
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required,uuid"`
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
// Use pointers to distinguish between "field not sent" and "field sent as false/empty".
type UpdateUserRequest struct {
	Name    *string    `json:"name" binding:"omitempty,notblank"`
	Role    *auth.Role `json:"role" binding:"omitempty,oneof=GUEST OWNER ADMIN"`
	Enabled *bool      `json:"enabled"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}
