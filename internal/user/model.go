package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrNotConfirmed       = apperror.Forbidden("email address has not been confirmed")
	ErrEmailRequired      = apperror.InvalidArgument("email is required")
	ErrNameRequired       = apperror.InvalidArgument("name is required")
	ErrPasswordTooShort   = apperror.InvalidArgument("password must be at least 8 characters")
	ErrInvalidRole        = apperror.InvalidArgument("invalid role")
	ErrSelfModification   = apperror.Forbidden("admins cannot demote, disable or delete themselves")
	ErrAlreadyConfirmed   = apperror.Conflict("email address already confirmed")
)

// ApplicationStatus tracks the user's request to become an owner.
type ApplicationStatus string

const (
	ApplicationNone     ApplicationStatus = "NONE"
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// User represents a user in the system.
type User struct {
	ID                     string // UUID
	Name                   string
	Email                  string
	PasswordHash           string
	Role                   auth.Role
	Enabled                bool // False until the email address is confirmed
	OwnerApplicationStatus ApplicationStatus
	CreatedAt              time.Time
	LastLoginAt            *time.Time
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email   string
	Name    string
	Role    string
	Enabled *bool // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
