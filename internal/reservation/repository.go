package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

// Guard runs inside the write transaction after the unit row is locked.
type Guard func(ctx context.Context, unit UnitInfo, src availability.Source) error

type Repository interface {
	Create(ctx context.Context, r *Reservation, guard Guard) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	// UpdateStatus persists r.Status. A non-nil guard runs under the unit lock first.
	UpdateStatus(ctx context.Context, r *Reservation, guard Guard) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var reservationColumns = []string{
	"r.id", "r.unit_id", "un.name", "un.owner_id", "r.user_id", "us.name", "us.email",
	"r.check_in", "r.check_out", "r.guests", "r.status", "r.created_at", "r.updated_at",
}

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var r Reservation
	dest := []any{
		&r.ID, &r.UnitID, &r.UnitName, &r.OwnerID, &r.UserID, &r.UserName, &r.UserEmail,
		&r.CheckIn, &r.CheckOut, &r.Guests, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func lockUnit(ctx context.Context, tx pgx.Tx, unitID string) (UnitInfo, error) {
	var u UnitInfo
	err := tx.QueryRow(ctx, `
		SELECT id, owner_id, name, capacity, available
		FROM public.units
		WHERE id = $1
		FOR UPDATE`, unitID,
	).Scan(&u.ID, &u.OwnerID, &u.Name, &u.Capacity, &u.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UnitInfo{}, ErrUnitNotFound
		}
		return UnitInfo{}, fmt.Errorf("lock unit failed: %w", err)
	}
	return u, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return ErrDateConflict
		case pgerrcode.ForeignKeyViolation:
			return ErrUnitNotFound
		}
	}
	return err
}

func (p *pgxRepository) Create(ctx context.Context, r *Reservation, guard Guard) error {
	return db.InTx(ctx, p.pool, func(tx pgx.Tx) error {
		unit, err := lockUnit(ctx, tx, r.UnitID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, unit, availability.NewPgxSource(tx)); err != nil {
				return err
			}
		}
		r.UnitName = unit.Name
		r.OwnerID = unit.OwnerID

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.reservations").
			Columns("unit_id", "user_id", "check_in", "check_out", "guests", "status").
			Values(r.UnitID, r.UserID, r.CheckIn, r.CheckOut, r.Guests, r.Status).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create reservation query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			if mapped := mapWriteError(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("create reservation failed: %w", err)
		}
		return nil
	})
}

func (p *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(reservationColumns...).
		From("public.reservations r").
		Join("public.units un ON r.unit_id = un.id").
		Join("public.users us ON r.user_id = us.id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	r, err := scanReservation(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return r, nil
}

func (p *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(append([]string{}, reservationColumns...), "count(*) OVER() AS total_count")...).
		From("public.reservations r").
		Join("public.units un ON r.unit_id = un.id").
		Join("public.users us ON r.user_id = us.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"r.user_id": filter.UserID})
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"un.owner_id": filter.OwnerID})
	}
	if filter.UnitID != "" {
		query = query.Where(squirrel.Eq{"r.unit_id": filter.UnitID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}

	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("r.check_in "+orderDir, "r.id")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Reservation
		total int
	)
	for rows.Next() {
		r, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reservations failed: %w", err)
	}
	return out, total, nil
}

func (p *pgxRepository) UpdateStatus(ctx context.Context, r *Reservation, guard Guard) error {
	return db.InTx(ctx, p.pool, func(tx pgx.Tx) error {
		if guard != nil {
			unit, err := lockUnit(ctx, tx, r.UnitID)
			if err != nil {
				return err
			}
			if err := guard(ctx, unit, availability.NewPgxSource(tx)); err != nil {
				return err
			}
		}

		err := tx.QueryRow(ctx, `
			UPDATE public.reservations
			SET status = $1, updated_at = now()
			WHERE id = $2
			RETURNING updated_at`, r.Status, r.ID,
		).Scan(&r.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if mapped := mapWriteError(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("update reservation status failed: %w", err)
		}
		return nil
	})
}
