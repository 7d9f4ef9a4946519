package ownerapp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/token"
)

type Service interface {
	// Submit files an application for the calling guest.
	Submit(ctx context.Context, p auth.Principal, message string) (*Application, error)
	Get(ctx context.Context, p auth.Principal, id string) (*Application, error)
	Mine(ctx context.Context, p auth.Principal) (*Application, error)
	List(ctx context.Context, p auth.Principal, filter Filter) ([]*Application, int, error)
	// Review approves or rejects a pending application. Admin only.
	Review(ctx context.Context, p auth.Principal, id string, approve bool, notes string) (*Application, error)
	// ReviewByToken does the same for the holder of an approval token.
	ReviewByToken(ctx context.Context, tok string, approve bool, notes string) (*Application, error)
}

type Options struct {
	ApprovalTokenTTL time.Duration
	// AdminRecipient addresses the submitted-application notification.
	AdminRecipient string
}

type service struct {
	repo     Repository
	tokens   token.Store
	notifier notify.Notifier
	opts     Options
}

func NewService(repo Repository, tokens token.Store, notifier notify.Notifier, opts Options) Service {
	if opts.ApprovalTokenTTL <= 0 {
		opts.ApprovalTokenTTL = 7 * 24 * time.Hour
	}
	if opts.AdminRecipient == "" {
		opts.AdminRecipient = "admins"
	}
	return &service{repo: repo, tokens: tokens, notifier: notifier, opts: opts}
}

func (s *service) Submit(ctx context.Context, p auth.Principal, message string) (*Application, error) {
	if p.Role != auth.RoleGuest {
		return nil, ErrAlreadyOwner
	}

	userID := p.UserID
	a := &Application{
		UserID:  &userID,
		Email:   p.Email,
		Message: strings.TrimSpace(message),
		Status:  StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(ctx, token.PurposeOwnerApproval, token.Metadata{
		"application_id": a.ID,
		"email":          a.Email,
	}, s.opts.ApprovalTokenTTL)
	if err != nil {
		// Admins can still review from the dashboard.
		slog.ErrorContext(ctx, "failed to issue approval token", slog.String("application_id", a.ID), slog.Any("error", err))
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.OwnerApplicationSubmitted, s.opts.AdminRecipient, map[string]any{
		"application_id": a.ID,
		"email":          a.Email,
		"message":        a.Message,
		"token":          tok,
	}))
	return a, nil
}

func (s *service) Get(ctx context.Context, p auth.Principal, id string) (*Application, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !a.BelongsTo(p.UserID) {
		return nil, ErrPermissionDenied
	}
	return a, nil
}

func (s *service) Mine(ctx context.Context, p auth.Principal) (*Application, error) {
	return s.repo.GetByUserID(ctx, p.UserID)
}

func (s *service) List(ctx context.Context, p auth.Principal, filter Filter) ([]*Application, int, error) {
	if !p.IsAdmin() {
		return nil, 0, ErrPermissionDenied
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Review(ctx context.Context, p auth.Principal, id string, approve bool, notes string) (*Application, error) {
	if !p.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.review(ctx, id, approve, notes)
}

func (s *service) ReviewByToken(ctx context.Context, tok string, approve bool, notes string) (*Application, error) {
	tok = strings.TrimSpace(tok)
	meta, err := s.tokens.Peek(ctx, token.PurposeOwnerApproval, tok)
	if err != nil {
		return nil, err
	}

	a, err := s.review(ctx, meta["application_id"], approve, notes)
	if err != nil && !errors.Is(err, ErrAlreadyReviewed) {
		return nil, err
	}

	// The token is spent once the application is no longer pending.
	if _, cerr := s.tokens.Consume(ctx, token.PurposeOwnerApproval, tok); cerr != nil && !errors.Is(cerr, token.ErrInvalidToken) {
		slog.WarnContext(ctx, "failed to consume approval token", slog.Any("error", cerr))
	}
	return a, err
}

func (s *service) review(ctx context.Context, id string, approve bool, notes string) (*Application, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	a.Status = StatusRejected
	if approve {
		a.Status = StatusApproved
	}
	a.ReviewNotes = strings.TrimSpace(notes)
	if err := s.repo.Review(ctx, a); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.NewEvent(notify.OwnerApplicationReviewed, a.Email, map[string]any{
		"application_id": a.ID,
		"status":         string(a.Status),
		"notes":          a.ReviewNotes,
	}))
	return a, nil
}
