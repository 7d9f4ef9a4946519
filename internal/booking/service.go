package booking

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
)

// CreateRequest is a guest booking placed without an account.
type CreateRequest struct {
	UnitID     string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestName  string
	GuestEmail string
	GuestPhone string
	Guests     int
}

type UpdateRequest struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Guests   *int
	Status   *Status
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, p auth.Principal, id string) (*Booking, error)
	// List returns bookings on the caller's units; admins see every booking.
	List(ctx context.Context, p auth.Principal, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, p auth.Principal, id string, req UpdateRequest) (*Booking, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type service struct {
	repo     Repository
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(repo Repository, notifier notify.Notifier) Service {
	return &service{repo: repo, notifier: notifier, now: time.Now}
}

func (s *service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// stayGuard checks the locked unit can host b for its dates and prices the stay.
func stayGuard(b *Booking) Guard {
	return func(ctx context.Context, unit UnitInfo, src availability.Source) error {
		if !unit.Available {
			return ErrUnitUnavailable
		}
		if b.Guests > unit.Capacity {
			return ErrTooManyGuests
		}
		ok, err := availability.NewChecker(src).Check(ctx, availability.Query{
			UnitID:          unit.ID,
			CheckIn:         b.CheckIn,
			CheckOut:        b.CheckOut,
			IgnoreBookingID: b.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrDateConflict
		}
		total := math.Round(float64(b.Nights())*unit.PricePerNight*100) / 100
		b.TotalPrice = &total
		return nil
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := availability.ValidateRange(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	if req.CheckIn.Before(s.today()) {
		return nil, ErrCheckInPast
	}
	if req.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	name := strings.TrimSpace(req.GuestName)
	email := strings.ToLower(strings.TrimSpace(req.GuestEmail))
	if name == "" || email == "" {
		return nil, ErrGuestRequired
	}

	b := &Booking{
		UnitID:     req.UnitID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		GuestName:  name,
		GuestEmail: email,
		GuestPhone: strings.TrimSpace(req.GuestPhone),
		Guests:     req.Guests,
		Status:     StatusPending,
	}

	if err := s.repo.Create(ctx, b, stayGuard(b)); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.BookingCreated, b.GuestEmail, eventData(b)))
	return b, nil
}

func (s *service) load(ctx context.Context, p auth.Principal, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(b.OwnerID) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, p auth.Principal, id string) (*Booking, error) {
	return s.load(ctx, p, id)
}

func (s *service) List(ctx context.Context, p auth.Principal, filter Filter) ([]*Booking, int, error) {
	if !p.IsAdmin() {
		filter.OwnerID = p.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id string, req UpdateRequest) (*Booking, error) {
	b, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	previous := b.Status

	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, ErrInvalidStatus
		}
		if next != b.Status && !b.Status.CanTransitionTo(next) {
			return nil, ErrInvalidTransition
		}
		b.Status = next
	}

	datesChanged := false
	if req.CheckIn != nil && !req.CheckIn.Equal(b.CheckIn) {
		b.CheckIn = *req.CheckIn
		datesChanged = true
	}
	if req.CheckOut != nil && !req.CheckOut.Equal(b.CheckOut) {
		b.CheckOut = *req.CheckOut
		datesChanged = true
	}
	if req.Guests != nil && *req.Guests != b.Guests {
		if *req.Guests < 1 {
			return nil, ErrInvalidGuests
		}
		b.Guests = *req.Guests
		datesChanged = true
	}

	// A stay edit always goes through the guard so the price follows the dates.
	var guard Guard
	if datesChanged {
		if !previous.Blocking() {
			return nil, ErrInvalidTransition
		}
		if !b.Status.Blocking() {
			return nil, ErrStayEditOnClose
		}
		if err := availability.ValidateRange(b.CheckIn, b.CheckOut); err != nil {
			return nil, err
		}
		if req.CheckIn != nil && b.CheckIn.Before(s.today()) {
			return nil, ErrCheckInPast
		}
		guard = stayGuard(b)
	}

	if err := s.repo.Update(ctx, b, guard); err != nil {
		return nil, err
	}

	if b.Status != previous {
		data := eventData(b)
		data["previous_status"] = string(previous)
		s.notifier.Notify(ctx, notify.NewEvent(notify.BookingStatusChanged, b.GuestEmail, data))
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func eventData(b *Booking) map[string]any {
	data := map[string]any{
		"booking_id": b.ID,
		"unit_id":    b.UnitID,
		"unit_name":  b.UnitName,
		"guest_name": b.GuestName,
		"check_in":   request.FormatDate(b.CheckIn),
		"check_out":  request.FormatDate(b.CheckOut),
		"guests":     b.Guests,
		"status":     string(b.Status),
	}
	if b.TotalPrice != nil {
		data["total_price"] = *b.TotalPrice
	}
	return data
}
