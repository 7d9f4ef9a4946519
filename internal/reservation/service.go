package reservation

import (
	"context"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
)

type CreateRequest struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

type Service interface {
	Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Reservation, error)
	GetByID(ctx context.Context, p auth.Principal, id string) (*Reservation, error)
	List(ctx context.Context, p auth.Principal, scope Scope, filter Filter) ([]*Reservation, int, error)
	// SetStatus confirms or cancels. Guests may only cancel their own reservations.
	SetStatus(ctx context.Context, p auth.Principal, id string, status Status) (*Reservation, error)
}

type service struct {
	repo     Repository
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(repo Repository, notifier notify.Notifier) Service {
	return &service{repo: repo, notifier: notifier, now: time.Now}
}

// calendarGuard rejects the write when r overlaps a blocking stay other than itself.
func calendarGuard(r *Reservation) Guard {
	return func(ctx context.Context, unit UnitInfo, src availability.Source) error {
		ok, err := availability.NewChecker(src).Check(ctx, availability.Query{
			UnitID:              unit.ID,
			CheckIn:             r.CheckIn,
			CheckOut:            r.CheckOut,
			IgnoreReservationID: r.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrDateConflict
		}
		return nil
	}
}

// createGuard also requires the unit to be listed and large enough.
func createGuard(r *Reservation) Guard {
	free := calendarGuard(r)
	return func(ctx context.Context, unit UnitInfo, src availability.Source) error {
		if !unit.Available {
			return ErrUnitUnavailable
		}
		if r.Guests > unit.Capacity {
			return ErrTooManyGuests
		}
		return free(ctx, unit, src)
	}
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Reservation, error) {
	if err := availability.ValidateRange(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	if req.CheckIn.Before(s.now().UTC().Truncate(24 * time.Hour)) {
		return nil, ErrCheckInPast
	}
	if req.Guests < 1 {
		return nil, ErrInvalidGuests
	}

	r := &Reservation{
		UnitID:    req.UnitID,
		UserID:    p.UserID,
		UserEmail: p.Email,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, r, createGuard(r)); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.ReservationCreated, r.UserEmail, eventData(r)))
	return r, nil
}

func canView(p auth.Principal, r *Reservation) bool {
	return p.UserID == r.UserID || p.CanManage(r.OwnerID)
}

func (s *service) GetByID(ctx context.Context, p auth.Principal, id string) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(p, r) {
		return nil, ErrPermissionDenied
	}
	return r, nil
}

func (s *service) List(ctx context.Context, p auth.Principal, scope Scope, filter Filter) ([]*Reservation, int, error) {
	switch scope {
	case ScopeOwned:
		filter.UserID = ""
		filter.OwnerID = p.UserID
		if p.IsAdmin() {
			filter.OwnerID = ""
		}
	default:
		filter.OwnerID = ""
		filter.UserID = p.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *service) SetStatus(ctx context.Context, p auth.Principal, id string, status Status) (*Reservation, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	manager := p.CanManage(r.OwnerID)
	if !manager {
		if p.UserID != r.UserID {
			return nil, ErrPermissionDenied
		}
		if status != StatusCancelled {
			return nil, ErrPermissionDenied
		}
	}

	if r.Status == status {
		return r, nil
	}
	if !r.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	previous := r.Status
	r.Status = status

	var guard Guard
	if status == StatusConfirmed {
		guard = calendarGuard(r)
	}
	if err := s.repo.UpdateStatus(ctx, r, guard); err != nil {
		return nil, err
	}

	data := eventData(r)
	data["previous_status"] = string(previous)
	s.notifier.Notify(ctx, notify.NewEvent(notify.ReservationStatusChanged, r.UserEmail, data))
	return r, nil
}

func eventData(r *Reservation) map[string]any {
	return map[string]any{
		"reservation_id": r.ID,
		"unit_id":        r.UnitID,
		"unit_name":      r.UnitName,
		"check_in":       request.FormatDate(r.CheckIn),
		"check_out":      request.FormatDate(r.CheckOut),
		"guests":         r.Guests,
		"status":         string(r.Status),
	}
}
