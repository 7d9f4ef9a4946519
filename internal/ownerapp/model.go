package ownerapp

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("owner application not found")
	ErrUserNotFound     = apperror.NotFound("applicant not found")
	ErrAlreadyApplied   = apperror.Conflict("an owner application was already submitted for this account")
	ErrAlreadyReviewed  = apperror.Conflict("owner application has already been reviewed")
	ErrAlreadyOwner     = apperror.Conflict("account already has owner access")
	ErrPermissionDenied = apperror.Forbidden("permission denied")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Application is a guest's request to list units as an owner.
type Application struct {
	ID string
	// UserID is nil once the applicant account has been deleted.
	UserID      *string
	Email       string
	Message     string
	Status      Status
	ReviewNotes string
	SubmittedAt time.Time
	ReviewedAt  *time.Time
}

// BelongsTo reports whether userID submitted the application.
func (a *Application) BelongsTo(userID string) bool {
	return a.UserID != nil && *a.UserID == userID
}

type Filter struct {
	Status    Status
	Email     string
	Page      int
	PageSize  int
	SortOrder string
}
