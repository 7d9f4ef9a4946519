package booking

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("booking not found")
	ErrUnitNotFound      = apperror.NotFound("unit not found")
	ErrDateConflict      = apperror.Conflict("unit is not available for the selected dates")
	ErrUnitUnavailable   = apperror.Conflict("unit is not accepting bookings")
	ErrInvalidStatus     = apperror.InvalidArgument("invalid booking status")
	ErrInvalidTransition = apperror.Conflict("booking status transition not allowed")
	ErrStayEditOnClose   = apperror.InvalidArgument("dates and guests cannot change together with cancelling or completing a booking")
	ErrCheckInPast       = apperror.InvalidArgument("check-in date cannot be in the past")
	ErrTooManyGuests     = apperror.InvalidArgument("number of guests exceeds unit capacity")
	ErrInvalidGuests     = apperror.InvalidArgument("number of guests must be at least 1")
	ErrGuestRequired     = apperror.InvalidArgument("guest name and email are required")
	ErrPermissionDenied  = apperror.Forbidden("permission denied")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in s may move to next.
// CANCELLED and COMPLETED are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Blocking reports whether the status occupies the unit's calendar.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is a guest stay request placed without an account.
type Booking struct {
	ID         string
	UnitID     string
	UnitName   string
	OwnerID    string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestName  string
	GuestEmail string
	GuestPhone string
	Guests     int
	TotalPrice *float64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Nights is the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// UnitInfo is the locked unit row a booking is written against.
type UnitInfo struct {
	ID            string
	OwnerID       string
	Name          string
	PricePerNight float64
	Capacity      int
	Available     bool
}

type Filter struct {
	OwnerID    string
	UnitID     string
	Status     string
	GuestEmail string
	From       *time.Time // Bookings checking out after this date
	To         *time.Time // Bookings checking in before this date
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
