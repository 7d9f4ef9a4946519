package reservation

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("reservation not found")
	ErrUnitNotFound      = apperror.NotFound("unit not found")
	ErrDateConflict      = apperror.Conflict("unit is not available for the selected dates")
	ErrUnitUnavailable   = apperror.Conflict("unit is not accepting reservations")
	ErrInvalidStatus     = apperror.InvalidArgument("invalid reservation status")
	ErrInvalidTransition = apperror.Conflict("reservation status transition not allowed")
	ErrCheckInPast       = apperror.InvalidArgument("check-in date cannot be in the past")
	ErrTooManyGuests     = apperror.InvalidArgument("number of guests exceeds unit capacity")
	ErrInvalidGuests     = apperror.InvalidArgument("number of guests must be at least 1")
	ErrPermissionDenied  = apperror.Forbidden("permission denied")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo reports whether a reservation in s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Reservation is a stay requested by a signed-in user.
type Reservation struct {
	ID        string
	UnitID    string
	UnitName  string
	OwnerID   string
	UserID    string
	UserName  string
	UserEmail string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnitInfo is the locked unit row a reservation is written against.
type UnitInfo struct {
	ID        string
	OwnerID   string
	Name      string
	Capacity  int
	Available bool
}

// Scope selects which side of a reservation the caller lists.
type Scope string

const (
	ScopeMine  Scope = "mine"  // Reservations the caller made
	ScopeOwned Scope = "owned" // Reservations on the caller's units
)

type Filter struct {
	UserID    string
	OwnerID   string
	UnitID    string
	Status    string
	Page      int
	PageSize  int
	SortOrder string
}
