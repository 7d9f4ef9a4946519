package profit

import (
	"context"
	"testing"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingRow struct {
	unitID string
	Record
}

type fakeRepo struct {
	unitOwners map[string]string
	users      map[string]bool
	bookings   []bookingRow
}

func (f *fakeRepo) UnitOwnerID(_ context.Context, unitID string) (string, error) {
	owner, ok := f.unitOwners[unitID]
	if !ok {
		return "", ErrUnitNotFound
	}
	return owner, nil
}

func (f *fakeRepo) OwnerExists(_ context.Context, ownerID string) (bool, error) {
	return f.users[ownerID], nil
}

// The fake returns every row of the scope, so the service's own filtering is exercised.
func (f *fakeRepo) UnitRevenue(_ context.Context, unitID string, _ *time.Time) ([]Record, error) {
	var out []Record
	for _, b := range f.bookings {
		if b.unitID == unitID {
			out = append(out, b.Record)
		}
	}
	return out, nil
}

func (f *fakeRepo) OwnerRevenue(_ context.Context, ownerID string, _ *time.Time) ([]Record, error) {
	var out []Record
	for _, b := range f.bookings {
		if f.unitOwners[b.unitID] == ownerID {
			out = append(out, b.Record)
		}
	}
	return out, nil
}

func newTestService(repo Repository, now time.Time) *service {
	return &service{repo: repo, now: func() time.Time { return now }}
}

func seededRepo() *fakeRepo {
	return &fakeRepo{
		unitOwners: map[string]string{"unit-a": "owner-1", "unit-b": "owner-1", "unit-c": "owner-2"},
		users:      map[string]bool{"owner-1": true, "owner-2": true, "owner-3": true},
		bookings: []bookingRow{
			{"unit-a", Record{CheckIn: date("2025-06-10"), TotalPrice: price(50), Status: "PENDING"}},
			{"unit-a", Record{CheckIn: date("2025-06-12"), TotalPrice: price(100), Status: "CONFIRMED"}},
			{"unit-b", Record{CheckIn: date("2025-08-01"), TotalPrice: price(75), Status: "CANCELLED"}},
			{"unit-b", Record{CheckIn: date("2025-08-20"), TotalPrice: price(60), Status: "COMPLETED"}},
			{"unit-c", Record{CheckIn: date("2025-08-20"), TotalPrice: price(1000), Status: "CONFIRMED"}},
			{"unit-a", Record{CheckIn: date("2024-01-05"), TotalPrice: price(40), Status: "COMPLETED"}},
		},
	}
}

var (
	owner1 = auth.Principal{UserID: "owner-1", Role: auth.RoleOwner}
	owner2 = auth.Principal{UserID: "owner-2", Role: auth.RoleOwner}
	admin  = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}
)

func TestProfitService_OwnerTotal_ExcludesPendingAndCancelled(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))

	total, err := svc.OwnerTotal(context.Background(), owner1, "owner-1", 12)
	require.NoError(t, err)
	assert.Equal(t, 160.0, total)

	all, err := svc.OwnerTotal(context.Background(), owner1, "owner-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 200.0, all)
}

func TestProfitService_OwnerMonthly_ZeroFilled(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))

	got, err := svc.OwnerMonthly(context.Background(), owner1, "owner-1", 6)
	require.NoError(t, err)
	assert.Equal(t, []MonthAmount{
		{Month: "2025-04", Amount: 0},
		{Month: "2025-05", Amount: 0},
		{Month: "2025-06", Amount: 100},
		{Month: "2025-07", Amount: 0},
		{Month: "2025-08", Amount: 60},
		{Month: "2025-09", Amount: 0},
		{Month: "2025-10", Amount: 0},
	}, got)
}

func TestProfitService_OwnerMonthly_AllHistoryStartsAtFirstBooking(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))

	got, err := svc.OwnerMonthly(context.Background(), owner1, "owner-1", 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.Equal(t, "2025-10", got[len(got)-1].Month)
	assert.Len(t, got, 22)
}

func TestProfitService_OwnerMonthly_NoBookings(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))

	got, err := svc.OwnerMonthly(context.Background(), auth.Principal{UserID: "owner-3", Role: auth.RoleOwner}, "owner-3", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProfitService_UnitMonthly_NotZeroFilled(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))

	got, err := svc.UnitMonthly(context.Background(), owner1, "unit-a", 0)
	require.NoError(t, err)
	assert.Equal(t, []MonthAmount{
		{Month: "2024-01", Amount: 40},
		{Month: "2025-06", Amount: 100},
	}, got)
}

func TestProfitService_Permissions(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.UnitTotal(ctx, owner2, "unit-a", 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.OwnerTotal(ctx, owner2, "owner-1", 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	total, err := svc.UnitTotal(ctx, admin, "unit-c", 0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, total)
}

func TestProfitService_NotFoundAndInvalidArguments(t *testing.T) {
	svc := newTestService(seededRepo(), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.UnitTotal(ctx, admin, "missing", 0)
	assert.ErrorIs(t, err, ErrUnitNotFound)

	_, err = svc.OwnerTotal(ctx, admin, "ghost", 0)
	assert.ErrorIs(t, err, ErrOwnerNotFound)

	_, err = svc.OwnerTotal(ctx, owner1, "owner-1", -1)
	assert.ErrorIs(t, err, ErrInvalidMonthsBack)

	_, err = svc.UnitForecast(ctx, owner1, "unit-a", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMonthsAhead)
}

func TestProfitService_Forecast(t *testing.T) {
	repo := &fakeRepo{
		unitOwners: map[string]string{"unit-a": "owner-1"},
		users:      map[string]bool{"owner-1": true},
		bookings: []bookingRow{
			{"unit-a", Record{CheckIn: date("2025-07-03"), TotalPrice: price(100), Status: "COMPLETED"}},
			{"unit-a", Record{CheckIn: date("2025-08-03"), TotalPrice: price(200), Status: "COMPLETED"}},
			{"unit-a", Record{CheckIn: date("2025-09-03"), TotalPrice: price(300), Status: "CONFIRMED"}},
		},
	}
	svc := newTestService(repo, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC))

	f, err := svc.UnitForecast(context.Background(), owner1, "unit-a", 0, 2)
	require.NoError(t, err)
	assert.Len(t, f.History, 3)
	assert.Equal(t, []MonthAmount{{Month: "2025-10", Amount: 400}, {Month: "2025-11", Amount: 500}}, f.Predictions)

	repo.bookings = repo.bookings[:1]
	f, err = svc.UnitForecast(context.Background(), owner1, "unit-a", 0, 2)
	require.NoError(t, err)
	assert.Empty(t, f.Predictions)
}
