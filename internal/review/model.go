package review

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrNotFound         = apperror.NotFound("review not found")
	ErrUnitNotFound     = apperror.NotFound("unit not found")
	ErrInvalidRating    = apperror.InvalidArgument("rating must be between 1 and 5")
	ErrAlreadyReviewed  = apperror.Conflict("you have already reviewed this unit")
	ErrPermissionDenied = apperror.Forbidden("permission denied")
)

// Review is a guest's rating of a unit. A user reviews a unit at most once.
type Review struct {
	ID        string
	UnitID    string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filter struct {
	UnitID    string
	UserID    string
	MinRating int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
