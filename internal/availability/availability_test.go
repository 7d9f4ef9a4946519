package availability

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type stay struct {
	id       string
	unitID   string
	checkIn  time.Time
	checkOut time.Time
	status   string
}

// fakeSource filters stored stays by status the same way the SQL source does.
type fakeSource struct {
	bookings     []stay
	reservations []stay
	err          error
	calls        int
}

func (f *fakeSource) ActiveBookings(_ context.Context, unitID string) ([]Period, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return collect(f.bookings, unitID, KindBooking, BlockingBookingStatuses), nil
}

func (f *fakeSource) ConfirmedReservations(_ context.Context, unitID string) ([]Period, error) {
	if f.err != nil {
		return nil, f.err
	}
	return collect(f.reservations, unitID, KindReservation, BlockingReservationStatuses), nil
}

func collect(stays []stay, unitID string, kind Kind, statuses []string) []Period {
	var out []Period
	for _, s := range stays {
		if s.unitID == unitID && slices.Contains(statuses, s.status) {
			out = append(out, Period{ID: s.id, Kind: kind, CheckIn: s.checkIn, CheckOut: s.checkOut})
		}
	}
	return out
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		a1, a2     string
		b1, b2     string
		wantResult bool
	}{
		{"identical", "2025-06-01", "2025-06-10", "2025-06-01", "2025-06-10", true},
		{"partial left", "2025-06-01", "2025-06-05", "2025-06-04", "2025-06-08", true},
		{"contained", "2025-06-01", "2025-06-30", "2025-06-10", "2025-06-12", true},
		{"touching end to start", "2025-06-01", "2025-06-05", "2025-06-05", "2025-06-08", false},
		{"disjoint", "2025-06-01", "2025-06-03", "2025-06-10", "2025-06-12", false},
		{"single night inside", "2025-07-01", "2025-07-05", "2025-07-04", "2025-07-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a1, a2, b1, b2 := day(tt.a1), day(tt.a2), day(tt.b1), day(tt.b2)
			assert.Equal(t, tt.wantResult, Overlaps(a1, a2, b1, b2))
			// Symmetric by construction.
			assert.Equal(t, Overlaps(a1, a2, b1, b2), Overlaps(b1, b2, a1, a2))
		})
	}
}

func TestOverlaps_TouchingNeverOverlaps(t *testing.T) {
	start := day("2025-01-01")
	for i := 1; i <= 40; i++ {
		d1 := start
		d2 := start.AddDate(0, 0, i)
		d3 := d2.AddDate(0, 0, i%7+1)
		assert.False(t, Overlaps(d1, d2, d2, d3), "ranges ending and starting on %s must not overlap", d2)
		assert.False(t, Overlaps(d2, d3, d1, d2))
	}
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(day("2025-06-01"), day("2025-06-02")))
	assert.ErrorIs(t, ValidateRange(day("2025-06-02"), day("2025-06-02")), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(day("2025-06-03"), day("2025-06-02")), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(time.Time{}, day("2025-06-02")), ErrDatesRequired)
}

func TestConflicts_SkipsMissingDates(t *testing.T) {
	existing := []Period{
		{ID: "no-check-in", CheckOut: day("2025-06-10")},
		{ID: "no-check-out", CheckIn: day("2025-06-01")},
		{ID: "real", CheckIn: day("2025-06-05"), CheckOut: day("2025-06-07")},
	}

	got := Conflicts(existing, day("2025-06-01"), day("2025-06-10"))
	require.Len(t, got, 1)
	assert.Equal(t, "real", got[0].ID)
}

func TestChecker_IsAvailable(t *testing.T) {
	src := &fakeSource{
		bookings: []stay{
			{id: "b-cancelled", unitID: "u1", checkIn: day("2025-06-01"), checkOut: day("2025-06-10"), status: "CANCELLED"},
			{id: "b-confirmed", unitID: "u1", checkIn: day("2025-07-01"), checkOut: day("2025-07-05"), status: "CONFIRMED"},
			{id: "b-pending", unitID: "u1", checkIn: day("2025-08-01"), checkOut: day("2025-08-03"), status: "PENDING"},
			{id: "b-completed", unitID: "u1", checkIn: day("2025-05-01"), checkOut: day("2025-05-03"), status: "COMPLETED"},
			{id: "b-other-unit", unitID: "u2", checkIn: day("2025-09-01"), checkOut: day("2025-09-10"), status: "CONFIRMED"},
		},
		reservations: []stay{
			{id: "r-pending", unitID: "u1", checkIn: day("2025-10-01"), checkOut: day("2025-10-05"), status: "PENDING"},
			{id: "r-confirmed", unitID: "u1", checkIn: day("2025-11-01"), checkOut: day("2025-11-05"), status: "CONFIRMED"},
		},
	}
	checker := NewChecker(src)

	tests := []struct {
		name     string
		unitID   string
		checkIn  string
		checkOut string
		want     bool
	}{
		{"cancelled booking does not block", "u1", "2025-06-01", "2025-06-10", true},
		{"overlap with confirmed booking", "u1", "2025-07-04", "2025-07-08", false},
		{"touching confirmed booking", "u1", "2025-07-05", "2025-07-08", true},
		{"overlap with pending booking", "u1", "2025-08-02", "2025-08-04", false},
		{"completed booking does not block", "u1", "2025-05-01", "2025-05-03", true},
		{"other unit's booking is irrelevant", "u1", "2025-09-02", "2025-09-04", true},
		{"pending reservation does not block", "u1", "2025-10-02", "2025-10-03", true},
		{"confirmed reservation blocks", "u1", "2025-11-04", "2025-11-06", false},
		{"unit without stays", "u3", "2025-07-01", "2025-07-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.IsAvailable(context.Background(), tt.unitID, day(tt.checkIn), day(tt.checkOut))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecker_Check_IgnoresOwnStay(t *testing.T) {
	src := &fakeSource{
		bookings: []stay{
			{id: "b1", unitID: "u1", checkIn: day("2025-07-01"), checkOut: day("2025-07-05"), status: "CONFIRMED"},
		},
		reservations: []stay{
			{id: "r1", unitID: "u1", checkIn: day("2025-08-01"), checkOut: day("2025-08-05"), status: "CONFIRMED"},
		},
	}
	checker := NewChecker(src)
	ctx := context.Background()

	ok, err := checker.Check(ctx, Query{UnitID: "u1", CheckIn: day("2025-07-02"), CheckOut: day("2025-07-06"), IgnoreBookingID: "b1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.Check(ctx, Query{UnitID: "u1", CheckIn: day("2025-08-02"), CheckOut: day("2025-08-03"), IgnoreReservationID: "r1"})
	require.NoError(t, err)
	assert.True(t, ok)

	// Ignoring a reservation ID must not hide a booking with the same ID.
	ok, err = checker.Check(ctx, Query{UnitID: "u1", CheckIn: day("2025-07-02"), CheckOut: day("2025-07-03"), IgnoreReservationID: "b1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecker_RejectsInvalidInput(t *testing.T) {
	src := &fakeSource{}
	checker := NewChecker(src)
	ctx := context.Background()

	_, err := checker.IsAvailable(ctx, "u1", day("2025-07-05"), day("2025-07-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = checker.IsAvailable(ctx, "", day("2025-07-01"), day("2025-07-05"))
	assert.ErrorIs(t, err, ErrMissingUnitID)

	assert.Zero(t, src.calls, "invalid input must not reach the source")
}

func TestChecker_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("db down")
	checker := NewChecker(&fakeSource{err: boom})

	_, err := checker.IsAvailable(context.Background(), "u1", day("2025-07-01"), day("2025-07-05"))
	assert.ErrorIs(t, err, boom)
}

func TestChecker_FilterAvailable(t *testing.T) {
	src := &fakeSource{
		bookings: []stay{
			{id: "b1", unitID: "u2", checkIn: day("2025-07-01"), checkOut: day("2025-07-10"), status: "PENDING"},
		},
		reservations: []stay{
			{id: "r1", unitID: "u3", checkIn: day("2025-07-03"), checkOut: day("2025-07-04"), status: "CONFIRMED"},
		},
	}
	checker := NewChecker(src)

	got, err := checker.FilterAvailable(context.Background(), []string{"u1", "u2", "u3", "u4"}, day("2025-07-02"), day("2025-07-06"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u4"}, got)

	_, err = checker.FilterAvailable(context.Background(), []string{"u1"}, day("2025-07-06"), day("2025-07-02"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}
