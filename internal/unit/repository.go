package unit

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

// Repository defines data access methods for units.
type Repository interface {
	Create(ctx context.Context, u *Unit, locationKey string) error
	GetByID(ctx context.Context, id string) (*Unit, error)
	// List returns one page of units plus the total match count.
	List(ctx context.Context, filter Filter) ([]*Unit, int, error)
	// ListAll returns every unit matching the filter, ignoring pagination.
	ListAll(ctx context.Context, filter Filter) ([]*Unit, error)
	Update(ctx context.Context, u *Unit, locationKey string) error
	Delete(ctx context.Context, id string) error
	// LocationTaken reports whether another unit than excludeID uses locationKey.
	LocationTaken(ctx context.Context, locationKey, excludeID string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var unitColumns = []string{
	"u.id", "u.owner_id", "o.name", "u.name", "u.description", "u.location", "u.county",
	"u.latitude", "u.longitude", "u.price_per_night::float8", "u.capacity", "u.available",
	"u.type", "u.images", "u.amenities",
	"COALESCE((SELECT AVG(rv.rating)::float8 FROM public.reviews rv WHERE rv.unit_id = u.id), 0)",
	"(SELECT COUNT(*) FROM public.reviews rv WHERE rv.unit_id = u.id)",
	"(SELECT COUNT(*) FROM public.bookings b WHERE b.unit_id = u.id AND b.status IN ('CONFIRMED', 'COMPLETED'))",
	"u.created_at", "u.updated_at",
}

var sortColumns = map[string]string{
	"created_at":      "u.created_at",
	"price_per_night": "u.price_per_night",
	"capacity":        "u.capacity",
	"name":            "u.name",
}

func scanUnit(row pgx.Row, extra ...any) (*Unit, error) {
	var u Unit
	dest := []any{
		&u.ID, &u.OwnerID, &u.OwnerName, &u.Name, &u.Description, &u.Location, &u.County,
		&u.Latitude, &u.Longitude, &u.PricePerNight, &u.Capacity, &u.Available,
		&u.Type, &u.Images, &u.Amenities,
		&u.Rating, &u.ReviewCount, &u.TotalBookings,
		&u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrLocationTaken
		case pgerrcode.ForeignKeyViolation:
			return ErrOwnerNotFound
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, u *Unit, locationKey string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.units").
		Columns(
			"owner_id", "name", "description", "location", "location_key", "county",
			"latitude", "longitude", "price_per_night", "capacity", "available",
			"type", "images", "amenities",
		).
		Values(
			u.OwnerID, u.Name, u.Description, u.Location, locationKey, u.County,
			u.Latitude, u.Longitude, u.PricePerNight, u.Capacity, u.Available,
			u.Type, u.Images, u.Amenities,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create unit query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create unit failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Unit, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(unitColumns...).
		From("public.units u").
		Join("public.users o ON o.id = u.owner_id").
		Where(squirrel.Eq{"u.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get unit query failed: %w", err)
	}

	u, err := scanUnit(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get unit failed: %w", err)
	}
	return u, nil
}

func (r *pgxRepository) filtered(filter Filter, columns ...string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(columns...).
		From("public.units u").
		Join("public.users o ON o.id = u.owner_id")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"u.owner_id": filter.OwnerID})
	}
	if filter.County != "" {
		query = query.Where(squirrel.ILike{"u.county": db.EscapeLike(filter.County)})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.ILike{"u.type": db.EscapeLike(filter.Type)})
	}
	if filter.Keyword != "" {
		like := db.ContainsPattern(filter.Keyword)
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.name": like},
			squirrel.ILike{"u.description": like},
			squirrel.ILike{"u.location": like},
		})
	}
	if filter.MinPrice != nil {
		query = query.Where(squirrel.GtOrEq{"u.price_per_night": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"u.price_per_night": *filter.MaxPrice})
	}
	if filter.Guests > 0 {
		query = query.Where(squirrel.GtOrEq{"u.capacity": filter.Guests})
	}
	if filter.Available != nil {
		query = query.Where(squirrel.Eq{"u.available": *filter.Available})
	}

	orderBy := "u.created_at"
	if col, ok := sortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	return query.OrderBy(orderBy+" "+orderDir, "u.id")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Unit, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	columns := append(append([]string{}, unitColumns...), "count(*) OVER() AS total_count")
	sql, args, err := r.filtered(filter, columns...).
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list units query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list units failed: %w", err)
	}
	defer rows.Close()

	var (
		units []*Unit
		total int
	)
	for rows.Next() {
		u, err := scanUnit(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan unit failed: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate units failed: %w", err)
	}
	return units, total, nil
}

func (r *pgxRepository) ListAll(ctx context.Context, filter Filter) ([]*Unit, error) {
	sql, args, err := r.filtered(filter, unitColumns...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all units query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list all units failed: %w", err)
	}
	defer rows.Close()

	var units []*Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit failed: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units failed: %w", err)
	}
	return units, nil
}

func (r *pgxRepository) Update(ctx context.Context, u *Unit, locationKey string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.units").
		Set("name", u.Name).
		Set("description", u.Description).
		Set("location", u.Location).
		Set("location_key", locationKey).
		Set("county", u.County).
		Set("latitude", u.Latitude).
		Set("longitude", u.Longitude).
		Set("price_per_night", u.PricePerNight).
		Set("capacity", u.Capacity).
		Set("available", u.Available).
		Set("type", u.Type).
		Set("images", u.Images).
		Set("amenities", u.Amenities).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": u.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update unit query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update unit failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unit failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) LocationTaken(ctx context.Context, locationKey, excludeID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.units").
		Where(squirrel.Eq{"location_key": locationKey})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build location check query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check location failed: %w", err)
	}
	return exists, nil
}
