package ownerapp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
	"github.com/nekogravitycat/stay-booking-backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps applications and the role of each applicant.
type fakeRepo struct {
	mu    sync.Mutex
	apps  map[string]*Application
	roles map[string]auth.Role
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[string]*Application), roles: make(map[string]auth.Role)}
}

func (r *fakeRepo) Create(_ context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.BelongsTo(*a.UserID) {
			return ErrAlreadyApplied
		}
	}
	a.ID = uuid.NewString()
	a.SubmittedAt = time.Now()
	cp := *a
	r.apps[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) GetByUserID(_ context.Context, userID string) (*Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.BelongsTo(userID) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Application, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Application
	for _, a := range r.apps {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Review(_ context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.apps[a.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	now := time.Now()
	a.ReviewedAt = &now
	cp := *a
	r.apps[a.ID] = &cp
	if a.Status == StatusApproved && a.UserID != nil && r.roles[*a.UserID] == auth.RoleGuest {
		r.roles[*a.UserID] = auth.RoleOwner
	}
	return nil
}

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notify.Event) {
	n.events = append(n.events, e)
}

func (n *recordingNotifier) last() notify.Event {
	return n.events[len(n.events)-1]
}

var admin = auth.Principal{UserID: "admin-1", Email: "admin@example.com", Role: auth.RoleAdmin}

func newGuest(repo *fakeRepo, email string) auth.Principal {
	p := auth.Principal{UserID: uuid.NewString(), Email: email, Role: auth.RoleGuest}
	repo.roles[p.UserID] = auth.RoleGuest
	return p
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	n := &recordingNotifier{}
	svc := NewService(repo, token.NewMemoryStore(), n, Options{})
	guest := newGuest(repo, "ana@example.com")

	a, err := svc.Submit(ctx, guest, "  I rent two flats  ")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "I rent two flats", a.Message)
	assert.True(t, a.BelongsTo(guest.UserID))

	ev := n.last()
	assert.Equal(t, notify.OwnerApplicationSubmitted, ev.Type)
	assert.Equal(t, "admins", ev.Recipient)
	assert.NotEmpty(t, ev.Data["token"])

	_, err = svc.Submit(ctx, guest, "again")
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	_, err = svc.Submit(ctx, auth.Principal{UserID: "o1", Role: auth.RoleOwner}, "")
	assert.ErrorIs(t, err, ErrAlreadyOwner)

	mine, err := svc.Mine(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, a.ID, mine.ID)
}

func TestService_ReviewByAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	n := &recordingNotifier{}
	svc := NewService(repo, token.NewMemoryStore(), n, Options{})

	ana := newGuest(repo, "ana@example.com")
	bob := newGuest(repo, "bob@example.com")
	a1, err := svc.Submit(ctx, ana, "")
	require.NoError(t, err)
	a2, err := svc.Submit(ctx, bob, "")
	require.NoError(t, err)

	_, err = svc.Review(ctx, ana, a1.ID, true, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	approved, err := svc.Review(ctx, admin, a1.ID, true, " welcome ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "welcome", approved.ReviewNotes)
	assert.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, auth.RoleOwner, repo.roles[ana.UserID])
	assert.Equal(t, notify.OwnerApplicationReviewed, n.last().Type)
	assert.Equal(t, "ana@example.com", n.last().Recipient)

	rejected, err := svc.Review(ctx, admin, a2.ID, false, "incomplete")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, auth.RoleGuest, repo.roles[bob.UserID])

	_, err = svc.Review(ctx, admin, a1.ID, false, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = svc.Review(ctx, admin, uuid.NewString(), true, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ReviewByToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	n := &recordingNotifier{}
	svc := NewService(repo, token.NewMemoryStore(), n, Options{})

	ana := newGuest(repo, "ana@example.com")
	a, err := svc.Submit(ctx, ana, "")
	require.NoError(t, err)
	tok := n.last().Data["token"].(string)

	_, err = svc.ReviewByToken(ctx, uuid.NewString(), true, "")
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	approved, err := svc.ReviewByToken(ctx, tok, true, "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, approved.ID)
	assert.Equal(t, auth.RoleOwner, repo.roles[ana.UserID])

	_, err = svc.ReviewByToken(ctx, tok, false, "")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_TokenSpentAfterAdminReview(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	n := &recordingNotifier{}
	svc := NewService(repo, token.NewMemoryStore(), n, Options{})

	ana := newGuest(repo, "ana@example.com")
	a, err := svc.Submit(ctx, ana, "")
	require.NoError(t, err)
	tok := n.last().Data["token"].(string)

	_, err = svc.Review(ctx, admin, a.ID, false, "")
	require.NoError(t, err)

	_, err = svc.ReviewByToken(ctx, tok, true, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	_, err = svc.ReviewByToken(ctx, tok, true, "")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_GetAndList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, token.NewMemoryStore(), &recordingNotifier{}, Options{})

	ana := newGuest(repo, "ana@example.com")
	bob := newGuest(repo, "bob@example.com")
	a, err := svc.Submit(ctx, ana, "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, ana, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Get(ctx, bob, a.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Get(ctx, admin, a.ID)
	assert.NoError(t, err)

	_, _, err = svc.List(ctx, ana, Filter{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	items, total, err := svc.List(ctx, admin, Filter{Status: StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
}
