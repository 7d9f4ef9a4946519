// Package availability decides whether a unit can be booked for a date range.
//
// Stays are half-open intervals [checkIn, checkOut): a stay ending on the day
// another begins does not conflict with it. Bookings block while PENDING or
// CONFIRMED; reservations block only once CONFIRMED.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidRange    = apperror.InvalidArgument("check-in date must be before check-out date")
	ErrMissingUnitID   = apperror.InvalidArgument("unit id is required")
	ErrDatesRequired   = apperror.InvalidArgument("check-in and check-out dates are required")
	ErrDatesIncomplete = apperror.InvalidArgument("check-in and check-out must be provided together")
)

// Status values that occupy a unit.
var (
	BlockingBookingStatuses     = []string{"PENDING", "CONFIRMED"}
	BlockingReservationStatuses = []string{"CONFIRMED"}
)

type Kind string

const (
	KindBooking     Kind = "booking"
	KindReservation Kind = "reservation"
)

// Period is an existing stay on a unit. Zero dates mean the stored value was missing.
type Period struct {
	ID       string
	Kind     Kind
	CheckIn  time.Time
	CheckOut time.Time
}

func (p Period) hasDates() bool {
	return !p.CheckIn.IsZero() && !p.CheckOut.IsZero()
}

// Source loads the stays that can block a unit.
type Source interface {
	// ActiveBookings returns bookings of the unit in a blocking status.
	ActiveBookings(ctx context.Context, unitID string) ([]Period, error)
	// ConfirmedReservations returns reservations of the unit in a blocking status.
	ConfirmedReservations(ctx context.Context, unitID string) ([]Period, error)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidateRange checks that both dates are set and checkIn < checkOut.
func ValidateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return ErrDatesRequired
	}
	if !checkIn.Before(checkOut) {
		return ErrInvalidRange
	}
	return nil
}

// Query describes one availability decision. The Ignore IDs exclude the stay
// being rescheduled or confirmed from its own conflict check.
type Query struct {
	UnitID              string
	CheckIn             time.Time
	CheckOut            time.Time
	IgnoreBookingID     string
	IgnoreReservationID string
}

// Conflicts returns the periods that overlap [checkIn, checkOut).
// Periods with missing dates are skipped.
func Conflicts(existing []Period, checkIn, checkOut time.Time) []Period {
	var out []Period
	for _, p := range existing {
		if !p.hasDates() {
			continue
		}
		if Overlaps(p.CheckIn, p.CheckOut, checkIn, checkOut) {
			out = append(out, p)
		}
	}
	return out
}

// Checker applies the overlap rule to the stays supplied by a Source.
type Checker struct {
	src Source
}

func NewChecker(src Source) *Checker {
	return &Checker{src: src}
}

// IsAvailable reports whether unitID is free for [checkIn, checkOut).
func (c *Checker) IsAvailable(ctx context.Context, unitID string, checkIn, checkOut time.Time) (bool, error) {
	return c.Check(ctx, Query{UnitID: unitID, CheckIn: checkIn, CheckOut: checkOut})
}

// Check evaluates q against blocking bookings first, then confirmed reservations.
func (c *Checker) Check(ctx context.Context, q Query) (bool, error) {
	if q.UnitID == "" {
		return false, ErrMissingUnitID
	}
	if err := ValidateRange(q.CheckIn, q.CheckOut); err != nil {
		return false, err
	}

	bookings, err := c.src.ActiveBookings(ctx, q.UnitID)
	if err != nil {
		return false, fmt.Errorf("load bookings for unit %s: %w", q.UnitID, err)
	}
	if hasConflict(bookings, q.CheckIn, q.CheckOut, q.IgnoreBookingID) {
		return false, nil
	}

	reservations, err := c.src.ConfirmedReservations(ctx, q.UnitID)
	if err != nil {
		return false, fmt.Errorf("load reservations for unit %s: %w", q.UnitID, err)
	}
	if hasConflict(reservations, q.CheckIn, q.CheckOut, q.IgnoreReservationID) {
		return false, nil
	}

	return true, nil
}

// FilterAvailable returns the subset of unitIDs that are free for the range, preserving order.
func (c *Checker) FilterAvailable(ctx context.Context, unitIDs []string, checkIn, checkOut time.Time) ([]string, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	free := make([]string, 0, len(unitIDs))
	for _, id := range unitIDs {
		ok, err := c.IsAvailable(ctx, id, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, id)
		}
	}
	return free, nil
}

func hasConflict(existing []Period, checkIn, checkOut time.Time, ignoreID string) bool {
	for _, p := range Conflicts(existing, checkIn, checkOut) {
		if ignoreID != "" && p.ID == ignoreID {
			continue
		}
		return true
	}
	return false
}
