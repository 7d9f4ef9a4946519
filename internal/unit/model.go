package unit

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("unit not found")
	ErrOwnerNotFound      = apperror.NotFound("owner not found")
	ErrNameRequired       = apperror.InvalidArgument("name is required")
	ErrLocationRequired   = apperror.InvalidArgument("location is required")
	ErrInvalidPrice       = apperror.InvalidArgument("price per night must be greater than zero")
	ErrInvalidCapacity    = apperror.InvalidArgument("capacity must be at least 1")
	ErrInvalidCoordinates = apperror.InvalidArgument("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrCoordinatesPair    = apperror.InvalidArgument("latitude and longitude must be set together")
	ErrLocationTaken      = apperror.Conflict("another unit is already listed at this location")
	ErrPermissionDenied   = apperror.Forbidden("permission denied")
)

// Unit is an accommodation listing owned by one user.
// Rating, ReviewCount and TotalBookings are derived from reviews and bookings
// when the unit is read; they are never written.
type Unit struct {
	ID            string
	OwnerID       string
	OwnerName     string
	Name          string
	Description   string
	Location      string
	County        *string
	Latitude      *float64
	Longitude     *float64
	PricePerNight float64
	Capacity      int
	Available     bool
	Type          string
	Images        []string
	Amenities     []string
	Rating        float64
	ReviewCount   int
	TotalBookings int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Coordinates exposes the optional position for proximity filtering.
func (u *Unit) Coordinates() (lat, lon *float64) {
	return u.Latitude, u.Longitude
}

// Filter defines parameters for listing units.
type Filter struct {
	OwnerID   string
	County    string
	Type      string
	Keyword   string // Matches name, description or location
	MinPrice  *float64
	MaxPrice  *float64
	Guests    int // Minimum capacity
	Available *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SearchFilter narrows a listing to units free for the whole date range.
type SearchFilter struct {
	Filter
	CheckIn  *time.Time
	CheckOut *time.Time
}

// NearbyQuery finds units within RadiusKm of a known city, optionally free for a date range.
type NearbyQuery struct {
	Filter
	City     string
	RadiusKm float64
	CheckIn  *time.Time
	CheckOut *time.Time
}

// NearbyUnit is a proximity search hit.
type NearbyUnit struct {
	Unit       *Unit
	DistanceKm float64
}
