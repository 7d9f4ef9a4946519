package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter Filter) ([]*Review, int, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var reviewColumns = []string{
	"rv.id", "rv.unit_id", "rv.user_id", "us.name", "rv.rating", "rv.comment", "rv.created_at", "rv.updated_at",
}

var sortColumns = map[string]string{
	"created_at": "rv.created_at",
	"rating":     "rv.rating",
}

func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	var r Review
	dest := []any{&r.ID, &r.UnitID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *pgxRepository) Create(ctx context.Context, r *Review) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reviews").
		Columns("unit_id", "user_id", "rating", "comment").
		Values(r.UnitID, r.UserID, r.Rating, r.Comment).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create review query failed: %w", err)
	}

	if err := p.pool.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrAlreadyReviewed
			case pgerrcode.ForeignKeyViolation:
				return ErrUnitNotFound
			}
		}
		return fmt.Errorf("create review failed: %w", err)
	}
	return nil
}

func (p *pgxRepository) GetByID(ctx context.Context, id string) (*Review, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(reviewColumns...).
		From("public.reviews rv").
		Join("public.users us ON rv.user_id = us.id").
		Where(squirrel.Eq{"rv.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get review query failed: %w", err)
	}

	r, err := scanReview(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review failed: %w", err)
	}
	return r, nil
}

func (p *pgxRepository) List(ctx context.Context, filter Filter) ([]*Review, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(append([]string{}, reviewColumns...), "count(*) OVER() AS total_count")...).
		From("public.reviews rv").
		Join("public.users us ON rv.user_id = us.id")

	if filter.UnitID != "" {
		query = query.Where(squirrel.Eq{"rv.unit_id": filter.UnitID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"rv.user_id": filter.UserID})
	}
	if filter.MinRating > 0 {
		query = query.Where(squirrel.GtOrEq{"rv.rating": filter.MinRating})
	}

	// Sorting
	orderBy := "rv.created_at"
	if col, ok := sortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "rv.id")

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
		return nil, 0, fmt.Errorf("build list reviews query failed: %w", err)
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews failed: %w", err)
	}
	defer rows.Close()

	var result []*Review
	var total int

	for rows.Next() {
		r, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review failed: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews failed: %w", err)
	}

	return result, total, nil
}

func (p *pgxRepository) Update(ctx context.Context, r *Review) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reviews").
		Set("rating", r.Rating).
		Set("comment", r.Comment).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": r.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update review query failed: %w", err)
	}

	if err := p.pool.QueryRow(ctx, query, args...).Scan(&r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update review failed: %w", err)
	}
	return nil
}

func (p *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete review query failed: %w", err)
	}

	ct, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete review failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
