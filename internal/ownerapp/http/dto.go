package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/ownerapp"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
)

type ApplicationResponse struct {
	ID          string     `json:"id"`
	UserID      *string    `json:"user_id"`
	Email       string     `json:"email"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ReviewNotes string     `json:"review_notes"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
}

func NewApplicationResponse(a *ownerapp.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Email:       a.Email,
		Message:     a.Message,
		Status:      string(a.Status),
		ReviewNotes: a.ReviewNotes,
		SubmittedAt: a.SubmittedAt,
		ReviewedAt:  a.ReviewedAt,
	}
}

type ListApplicationsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Email  string `form:"email"`
}

type SubmitRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

type ReviewRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ReviewByTokenRequest is posted from the link in the admin notification.
type ReviewByTokenRequest struct {
	Token    string `json:"token" binding:"required,uuid"`
	Decision string `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Notes    string `json:"notes" binding:"max=2000"`
}
