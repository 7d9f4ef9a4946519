package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/review"
	userHttp "github.com/nekogravitycat/stay-booking-backend/internal/user/http"
)

type ReviewResponse struct {
	ID        string           `json:"id"`
	UnitID    string           `json:"unit_id"`
	User      userHttp.UserTag `json:"user"`
	Rating    int              `json:"rating"`
	Comment   string           `json:"comment"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UnitID:    r.UnitID,
		User:      userHttp.UserTag{ID: r.UserID, Name: r.UserName},
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type ListReviewsRequest struct {
	request.ListParams
	MinRating int    `form:"min_rating" binding:"omitempty,min=1,max=5"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at rating"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=4000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=4000"`
}
