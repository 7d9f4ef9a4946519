package review

import (
	"context"
	"strings"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
)

type CreateRequest struct {
	UnitID  string
	Rating  int
	Comment string
}

type UpdateRequest struct {
	Rating  *int
	Comment *string
}

type Service interface {
	Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter Filter) ([]*Review, int, error)
	// Update edits the caller's own review.
	Update(ctx context.Context, p auth.Principal, id string, req UpdateRequest) (*Review, error)
	// Delete removes the caller's own review, or any review for an admin.
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Review, error) {
	if !validRating(req.Rating) {
		return nil, ErrInvalidRating
	}

	r := &Review{
		UnitID:  req.UnitID,
		UserID:  p.UserID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Review, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id string, req UpdateRequest) (*Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != p.UserID {
		return nil, ErrPermissionDenied
	}

	if req.Rating != nil {
		if !validRating(*req.Rating) {
			return nil, ErrInvalidRating
		}
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = strings.TrimSpace(*req.Comment)
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != p.UserID && !p.IsAdmin() {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}
