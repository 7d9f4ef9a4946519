package profit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the booking revenue of units and owners.
type Repository interface {
	// UnitOwnerID returns the owner of a unit, or ErrUnitNotFound.
	UnitOwnerID(ctx context.Context, unitID string) (string, error)
	OwnerExists(ctx context.Context, ownerID string) (bool, error)
	UnitRevenue(ctx context.Context, unitID string, since *time.Time) ([]Record, error)
	OwnerRevenue(ctx context.Context, ownerID string, since *time.Time) ([]Record, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) UnitOwnerID(ctx context.Context, unitID string) (string, error) {
	var ownerID string
	err := r.pool.QueryRow(ctx, `SELECT owner_id FROM public.units WHERE id = $1`, unitID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnitNotFound
		}
		return "", fmt.Errorf("get unit owner failed: %w", err)
	}
	return ownerID, nil
}

func (r *pgxRepository) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM public.users WHERE id = $1)`, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check owner exists failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UnitRevenue(ctx context.Context, unitID string, since *time.Time) ([]Record, error) {
	return r.revenue(ctx, squirrel.Eq{"b.unit_id": unitID}, since)
}

func (r *pgxRepository) OwnerRevenue(ctx context.Context, ownerID string, since *time.Time) ([]Record, error) {
	return r.revenue(ctx, squirrel.Eq{"u.owner_id": ownerID}, since)
}

func (r *pgxRepository) revenue(ctx context.Context, scope squirrel.Sqlizer, since *time.Time) ([]Record, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("b.check_in", "b.total_price::float8", "b.status").
		From("public.bookings b").
		Join("public.units u ON u.id = b.unit_id").
		Where(scope).
		Where(squirrel.Eq{"b.status": RevenueStatuses}).
		Where("b.total_price IS NOT NULL").
		OrderBy("b.check_in")

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"b.check_in": *since})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build revenue query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query revenue failed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.CheckIn, &rec.TotalPrice, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan revenue record failed: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue records failed: %w", err)
	}
	return records, nil
}
