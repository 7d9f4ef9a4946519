package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

const selectUser = `
	SELECT
		u.id,
		u.name,
		u.email,
		u.password_hash,
		u.role,
		u.enabled,
		u.owner_application_status,
		u.created_at,
		u.last_login_at
	FROM public.users u
`

var sortColumns = map[string]string{
	"name":       "u.name",
	"email":      "u.email",
	"created_at": "u.created_at",
}

func scanUser(row pgx.Row, extra ...any) (*User, error) {
	var u User
	dest := []any{
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Enabled,
		&u.OwnerApplicationStatus,
		&u.CreatedAt,
		&u.LastLoginAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+" WHERE u.email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByEmail query failed: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+" WHERE u.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByID query failed: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (name, email, password_hash, role, enabled, owner_application_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Enabled,
		u.OwnerApplicationStatus,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("Create user failed: %w", err)
	}

	return nil
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `
		UPDATE public.users
		SET last_login_at = $1
		WHERE id = $2
	`

	ct, err := r.pool.Exec(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	var args []any
	queryBuilder := bytes.NewBufferString(`
		SELECT
			u.id,
			u.name,
			u.email,
			u.password_hash,
			u.role,
			u.enabled,
			u.owner_application_status,
			u.created_at,
			u.last_login_at,
			count(*) OVER() AS total_count
		FROM public.users u
		WHERE 1=1
	`)

	// Dynamic filtering
	if filter.Email != "" {
		args = append(args, db.ContainsPattern(filter.Email))
		queryBuilder.WriteString(" AND u.email ILIKE $" + strconv.Itoa(len(args)))
	}
	if filter.Name != "" {
		args = append(args, db.ContainsPattern(filter.Name))
		queryBuilder.WriteString(" AND u.name ILIKE $" + strconv.Itoa(len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		queryBuilder.WriteString(" AND u.role = $" + strconv.Itoa(len(args)))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		queryBuilder.WriteString(" AND u.enabled = $" + strconv.Itoa(len(args)))
	}

	// Sorting
	orderBy := "u.created_at"
	if col, ok := sortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	queryBuilder.WriteString(" ORDER BY " + orderBy + " " + orderDir + ", u.id")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	args = append(args, filter.PageSize, offset)
	queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int

	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users failed: %w", err)
	}

	return users, total, nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE public.users
		SET name = $1, role = $2, enabled = $3, owner_application_status = $4
		WHERE id = $5
	`

	ct, err := r.pool.Exec(ctx, query, u.Name, u.Role, u.Enabled, u.OwnerApplicationStatus, u.ID)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the user. Owner applications keep their email and lose the user link.
func (r *pgxUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.users WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
