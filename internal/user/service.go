package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/token"
)

// Service defines business logic related to users.
type Service interface {
	// Register creates a disabled guest account and sends out a confirmation token.
	Register(ctx context.Context, email, password, name string) (*User, error)
	// ConfirmEmail redeems a confirmation token and enables the account.
	ConfirmEmail(ctx context.Context, tok string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// CurrentRole returns the stored role of an enabled account.
	CurrentRole(ctx context.Context, id string) (auth.Role, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, p auth.Principal, id string, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

// UpdateUserRequest carries the admin-editable fields. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name    *string
	Role    *auth.Role
	Enabled *bool
}

type Options struct {
	ConfirmTokenTTL   time.Duration
	MinPasswordLength int
}

type service struct {
	repo     Repository
	hasher   auth.PasswordHasher
	tokens   token.Store
	notifier notify.Notifier
	opts     Options
	now      func() time.Time
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, tokens token.Store, notifier notify.Notifier, opts Options) Service {
	if opts.ConfirmTokenTTL <= 0 {
		opts.ConfirmTokenTTL = 24 * time.Hour
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 8
	}
	return &service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *service) Register(ctx context.Context, email, password, name string) (*User, error) {
	cleanEmail := NormalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return nil, ErrNameRequired
	}
	if len(password) < s.opts.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if email is already used.
	_, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:                   cleanName,
		Email:                  cleanEmail,
		PasswordHash:           hash,
		Role:                   auth.RoleGuest,
		Enabled:                false,
		OwnerApplicationStatus: ApplicationNone,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(ctx, token.PurposeEmailConfirm, token.Metadata{
		"user_id": u.ID,
		"email":   u.Email,
	}, s.opts.ConfirmTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.UserRegistered, u.Email, map[string]any{
		"user_id": u.ID,
		"name":    u.Name,
		"token":   tok,
	}))

	return u, nil
}

func (s *service) ConfirmEmail(ctx context.Context, tok string) (*User, error) {
	meta, err := s.tokens.Consume(ctx, token.PurposeEmailConfirm, strings.TrimSpace(tok))
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, meta["user_id"])
	if err != nil {
		return nil, err
	}
	if u.Enabled {
		return nil, ErrAlreadyConfirmed
	}

	u.Enabled = true
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := NormalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.Enabled {
		return nil, ErrNotConfirmed
	}

	// Login still succeeds when the timestamp cannot be stored.
	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		slog.WarnContext(ctx, "failed to update last login", slog.String("user_id", u.ID), slog.Any("error", err))
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CurrentRole(ctx context.Context, id string) (auth.Role, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !u.Enabled {
		return "", ErrNotConfirmed
	}
	return u.Role, nil
}

func (s *service) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	filter.Email = NormalizeEmail(filter.Email)
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id string, req UpdateUserRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		u.Name = name
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if id == p.UserID && *req.Role != auth.RoleAdmin {
			return nil, ErrSelfModification
		}
		u.Role = *req.Role
	}
	if req.Enabled != nil {
		if id == p.UserID && !*req.Enabled {
			return nil, ErrSelfModification
		}
		u.Enabled = *req.Enabled
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if id == p.UserID {
		return ErrSelfModification
	}
	return s.repo.Delete(ctx, id)
}

// NormalizeEmail trims spaces and lowercases the email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
