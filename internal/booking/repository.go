package booking

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
// Returning an error aborts the write.
type Guard func(ctx context.Context, unit UnitInfo, src availability.Source) error

type Repository interface {
	// Create locks the unit, runs guard against the transaction and inserts b.
	Create(ctx context.Context, b *Booking, guard Guard) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update persists dates and status. A non-nil guard runs under the unit lock first.
	Update(ctx context.Context, b *Booking, guard Guard) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.unit_id", "u.name", "u.owner_id",
	"b.check_in", "b.check_out", "b.guest_name", "b.guest_email", "b.guest_phone",
	"b.guests", "b.total_price::float8", "b.status", "b.created_at", "b.updated_at",
}

var sortColumns = map[string]string{
	"check_in":   "b.check_in",
	"created_at": "b.created_at",
	"status":     "b.status",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.UnitID, &b.UnitName, &b.OwnerID,
		&b.CheckIn, &b.CheckOut, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.Guests, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// lockUnit takes a row lock on the unit so concurrent writers for the same
// unit serialize their availability checks.
func lockUnit(ctx context.Context, tx pgx.Tx, unitID string) (UnitInfo, error) {
	var u UnitInfo
	err := tx.QueryRow(ctx, `
		SELECT id, owner_id, name, price_per_night::float8, capacity, available
		FROM public.units
		WHERE id = $1
		FOR UPDATE`, unitID,
	).Scan(&u.ID, &u.OwnerID, &u.Name, &u.PricePerNight, &u.Capacity, &u.Available)
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

func (r *pgxRepository) Create(ctx context.Context, b *Booking, guard Guard) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		unit, err := lockUnit(ctx, tx, b.UnitID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, unit, availability.NewPgxSource(tx)); err != nil {
				return err
			}
		}
		b.UnitName = unit.Name
		b.OwnerID = unit.OwnerID

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.bookings").
			Columns(
				"unit_id", "check_in", "check_out", "guest_name", "guest_email",
				"guest_phone", "guests", "total_price", "status",
			).
			Values(
				b.UnitID, b.CheckIn, b.CheckOut, b.GuestName, b.GuestEmail,
				b.GuestPhone, b.Guests, b.TotalPrice, b.Status,
			).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			if mapped := mapWriteError(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("create booking failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.units u ON b.unit_id = u.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(append([]string{}, bookingColumns...), "count(*) OVER() AS total_count")...).
		From("public.bookings b").
		Join("public.units u ON b.unit_id = u.id")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"u.owner_id": filter.OwnerID})
	}
	if filter.UnitID != "" {
		query = query.Where(squirrel.Eq{"b.unit_id": filter.UnitID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.GuestEmail != "" {
		query = query.Where(squirrel.Eq{"lower(b.guest_email)": filter.GuestEmail})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.check_out": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.check_in": *filter.To})
	}

	// Sorting
	orderBy := "b.check_in"
	if col, ok := sortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "b.id")

	// Pagination
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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking, guard Guard) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if guard != nil {
			unit, err := lockUnit(ctx, tx, b.UnitID)
			if err != nil {
				return err
			}
			if err := guard(ctx, unit, availability.NewPgxSource(tx)); err != nil {
				return err
			}
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Update("public.bookings").
			Set("check_in", b.CheckIn).
			Set("check_out", b.CheckOut).
			Set("guests", b.Guests).
			Set("total_price", b.TotalPrice).
			Set("status", b.Status).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build update booking query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if mapped := mapWriteError(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("update booking failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
