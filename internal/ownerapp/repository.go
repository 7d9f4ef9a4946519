package ownerapp

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

type Repository interface {
	// Create stores a pending application and marks the applicant PENDING.
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	GetByUserID(ctx context.Context, userID string) (*Application, error)
	List(ctx context.Context, filter Filter) ([]*Application, int, error)
	// Review records the decision on a pending application and applies it to
	// the applicant account in the same transaction.
	Review(ctx context.Context, a *Application) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var applicationColumns = []string{
	"a.id", "a.user_id", "a.email", "a.message", "a.status", "a.review_notes", "a.submitted_at", "a.reviewed_at",
}

func scanApplication(row pgx.Row, extra ...any) (*Application, error) {
	var a Application
	dest := []any{&a.ID, &a.UserID, &a.Email, &a.Message, &a.Status, &a.ReviewNotes, &a.SubmittedAt, &a.ReviewedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *pgxRepository) Create(ctx context.Context, a *Application) error {
	return db.InTx(ctx, p.pool, func(tx pgx.Tx) error {
		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.owner_applications").
			Columns("user_id", "email", "message", "status").
			Values(a.UserID, a.Email, a.Message, a.Status).
			Suffix("RETURNING id, submitted_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create application query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&a.ID, &a.SubmittedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case pgerrcode.UniqueViolation:
					return ErrAlreadyApplied
				case pgerrcode.ForeignKeyViolation:
					return ErrUserNotFound
				}
			}
			return fmt.Errorf("create application failed: %w", err)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE public.users SET owner_application_status = $1 WHERE id = $2`,
			StatusPending, a.UserID,
		)
		if err != nil {
			return fmt.Errorf("mark applicant pending failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (p *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Application, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(applicationColumns...).
		From("public.owner_applications a").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get application query failed: %w", err)
	}

	a, err := scanApplication(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application failed: %w", err)
	}
	return a, nil
}

func (p *pgxRepository) GetByID(ctx context.Context, id string) (*Application, error) {
	return p.getOne(ctx, squirrel.Eq{"a.id": id})
}

func (p *pgxRepository) GetByUserID(ctx context.Context, userID string) (*Application, error) {
	return p.getOne(ctx, squirrel.Eq{"a.user_id": userID})
}

func (p *pgxRepository) List(ctx context.Context, filter Filter) ([]*Application, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(append([]string{}, applicationColumns...), "count(*) OVER() AS total_count")...).
		From("public.owner_applications a")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"a.status": filter.Status})
	}
	if filter.Email != "" {
		query = query.Where(squirrel.ILike{"a.email": db.ContainsPattern(filter.Email)})
	}

	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("a.submitted_at "+orderDir, "a.id")

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
		return nil, 0, fmt.Errorf("build list applications query failed: %w", err)
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Application
		total int
	)
	for rows.Next() {
		a, err := scanApplication(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan application failed: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate applications failed: %w", err)
	}
	return out, total, nil
}

func (p *pgxRepository) Review(ctx context.Context, a *Application) error {
	return db.InTx(ctx, p.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE public.owner_applications
			SET status = $1, review_notes = $2, reviewed_at = now()
			WHERE id = $3 AND status = 'PENDING'
			RETURNING reviewed_at, user_id`, a.Status, a.ReviewNotes, a.ID,
		).Scan(&a.ReviewedAt, &a.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				if err := tx.QueryRow(ctx,
					`SELECT EXISTS (SELECT 1 FROM public.owner_applications WHERE id = $1)`, a.ID,
				).Scan(&exists); err != nil {
					return fmt.Errorf("check application failed: %w", err)
				}
				if exists {
					return ErrAlreadyReviewed
				}
				return ErrNotFound
			}
			return fmt.Errorf("review application failed: %w", err)
		}

		if a.UserID == nil {
			return nil
		}

		// Approval promotes guests only; admins keep their role.
		if _, err := tx.Exec(ctx, `
			UPDATE public.users
			SET owner_application_status = $1,
				role = CASE WHEN $1 = 'APPROVED' AND role = 'GUEST' THEN 'OWNER' ELSE role END
			WHERE id = $2`, a.Status, *a.UserID,
		); err != nil {
			return fmt.Errorf("apply review to applicant failed: %w", err)
		}
		return nil
	})
}
