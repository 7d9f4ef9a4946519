package profit

import (
	"context"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
)

// Service answers revenue questions for units and owner portfolios.
type Service interface {
	UnitTotal(ctx context.Context, viewer auth.Principal, unitID string, monthsBack int) (float64, error)
	UnitMonthly(ctx context.Context, viewer auth.Principal, unitID string, monthsBack int) ([]MonthAmount, error)
	UnitForecast(ctx context.Context, viewer auth.Principal, unitID string, monthsBack, monthsAhead int) (*Forecast, error)

	OwnerTotal(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack int) (float64, error)
	OwnerMonthly(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack int) ([]MonthAmount, error)
	OwnerForecast(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack, monthsAhead int) (*Forecast, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) UnitTotal(ctx context.Context, viewer auth.Principal, unitID string, monthsBack int) (float64, error) {
	records, err := s.unitRecords(ctx, viewer, unitID, monthsBack)
	if err != nil {
		return 0, err
	}
	return Total(records), nil
}

// UnitMonthly lists only the months in which the unit earned something.
func (s *service) UnitMonthly(ctx context.Context, viewer auth.Principal, unitID string, monthsBack int) ([]MonthAmount, error) {
	records, err := s.unitRecords(ctx, viewer, unitID, monthsBack)
	if err != nil {
		return nil, err
	}
	return Monthly(records), nil
}

func (s *service) UnitForecast(ctx context.Context, viewer auth.Principal, unitID string, monthsBack, monthsAhead int) (*Forecast, error) {
	if monthsAhead <= 0 {
		return nil, ErrInvalidMonthsAhead
	}
	history, err := s.UnitMonthly(ctx, viewer, unitID, monthsBack)
	if err != nil {
		return nil, err
	}
	return &Forecast{History: history, Predictions: Predict(history, monthsAhead)}, nil
}

func (s *service) OwnerTotal(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack int) (float64, error) {
	records, _, err := s.ownerRecords(ctx, viewer, ownerID, monthsBack)
	if err != nil {
		return 0, err
	}
	return Total(records), nil
}

// OwnerMonthly returns a continuous month axis: every month from the start of
// the window (or the first booking, for all history) to the current month is
// present, with 0 where nothing was earned.
func (s *service) OwnerMonthly(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack int) ([]MonthAmount, error) {
	records, since, err := s.ownerRecords(ctx, viewer, ownerID, monthsBack)
	if err != nil {
		return nil, err
	}

	series := Monthly(records)
	now := s.now()

	var from time.Time
	switch {
	case since != nil:
		from = *since
	case len(records) > 0:
		from = earliestCheckIn(records)
	default:
		return series, nil
	}
	if from.After(now) {
		return series, nil
	}
	return ZeroFill(series, from, now), nil
}

func (s *service) OwnerForecast(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack, monthsAhead int) (*Forecast, error) {
	if monthsAhead <= 0 {
		return nil, ErrInvalidMonthsAhead
	}
	history, err := s.OwnerMonthly(ctx, viewer, ownerID, monthsBack)
	if err != nil {
		return nil, err
	}
	return &Forecast{History: history, Predictions: Predict(history, monthsAhead)}, nil
}

func (s *service) unitRecords(ctx context.Context, viewer auth.Principal, unitID string, monthsBack int) ([]Record, error) {
	if monthsBack < 0 {
		return nil, ErrInvalidMonthsBack
	}

	ownerID, err := s.repo.UnitOwnerID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(ownerID) {
		return nil, ErrPermissionDenied
	}

	since := Since(s.now(), monthsBack)
	records, err := s.repo.UnitRevenue(ctx, unitID, since)
	if err != nil {
		return nil, err
	}
	return Filter(records, since), nil
}

func (s *service) ownerRecords(ctx context.Context, viewer auth.Principal, ownerID string, monthsBack int) ([]Record, *time.Time, error) {
	if monthsBack < 0 {
		return nil, nil, ErrInvalidMonthsBack
	}
	if !viewer.CanManage(ownerID) {
		return nil, nil, ErrPermissionDenied
	}

	exists, err := s.repo.OwnerExists(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrOwnerNotFound
	}

	since := Since(s.now(), monthsBack)
	records, err := s.repo.OwnerRevenue(ctx, ownerID, since)
	if err != nil {
		return nil, nil, err
	}
	return Filter(records, since), since, nil
}

func earliestCheckIn(records []Record) time.Time {
	first := records[0].CheckIn
	for _, r := range records[1:] {
		if r.CheckIn.Before(first) {
			first = r.CheckIn
		}
	}
	return first
}
