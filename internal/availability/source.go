package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

type pgxSource struct {
	q db.Querier
}

// NewPgxSource reads stays through q, which may be the pool or an open transaction.
func NewPgxSource(q db.Querier) Source {
	return &pgxSource{q: q}
}

func (s *pgxSource) ActiveBookings(ctx context.Context, unitID string) ([]Period, error) {
	return s.periods(ctx, "public.bookings", KindBooking, unitID, BlockingBookingStatuses)
}

func (s *pgxSource) ConfirmedReservations(ctx context.Context, unitID string) ([]Period, error) {
	return s.periods(ctx, "public.reservations", KindReservation, unitID, BlockingReservationStatuses)
}

func (s *pgxSource) periods(ctx context.Context, table string, kind Kind, unitID string, statuses []string) ([]Period, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "check_in", "check_out").
		From(table).
		Where(squirrel.Eq{"unit_id": unitID}).
		Where(squirrel.Eq{"status": statuses}).
		OrderBy("check_in").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s periods query failed: %w", kind, err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s periods failed: %w", kind, err)
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var (
			p                 Period
			checkIn, checkOut *time.Time
		)
		if err := rows.Scan(&p.ID, &checkIn, &checkOut); err != nil {
			return nil, fmt.Errorf("scan %s period failed: %w", kind, err)
		}
		p.Kind = kind
		if checkIn != nil {
			p.CheckIn = *checkIn
		}
		if checkOut != nil {
			p.CheckOut = *checkOut
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s periods failed: %w", kind, err)
	}
	return out, nil
}
