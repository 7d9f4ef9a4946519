package unit

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	units map[string]*Unit
	keys  map[string]string // unit id -> location key
	seq   int
}

func newFakeRepo(units ...*Unit) *fakeRepo {
	r := &fakeRepo{units: map[string]*Unit{}, keys: map[string]string{}}
	for _, u := range units {
		r.units[u.ID] = u
		r.keys[u.ID] = u.Location
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, u *Unit, key string) error {
	r.seq++
	u.ID = "unit-new-" + string(rune('a'+r.seq))
	cp := *u
	r.units[u.ID] = &cp
	r.keys[u.ID] = key
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) sorted(filter Filter) []*Unit {
	var out []*Unit
	for _, u := range r.units {
		if filter.Guests > 0 && u.Capacity < filter.Guests {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Unit, int, error) {
	all := r.sorted(filter)
	return paginate(all, filter.Page, filter.PageSize), len(all), nil
}

func (r *fakeRepo) ListAll(_ context.Context, filter Filter) ([]*Unit, error) {
	return r.sorted(filter), nil
}

func (r *fakeRepo) Update(_ context.Context, u *Unit, key string) error {
	if _, ok := r.units[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	r.units[u.ID] = &cp
	r.keys[u.ID] = key
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.units[id]; !ok {
		return ErrNotFound
	}
	delete(r.units, id)
	return nil
}

func (r *fakeRepo) LocationTaken(_ context.Context, key, excludeID string) (bool, error) {
	for id, k := range r.keys {
		if k == key && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// stubSource serves fixed active bookings per unit.
type stubSource struct {
	bookings map[string][]availability.Period
}

func (s stubSource) ActiveBookings(_ context.Context, unitID string) ([]availability.Period, error) {
	return s.bookings[unitID], nil
}

func (s stubSource) ConfirmedReservations(context.Context, string) ([]availability.Period, error) {
	return nil, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

var (
	owner = auth.Principal{UserID: "owner-1", Role: auth.RoleOwner}
	other = auth.Principal{UserID: "owner-2", Role: auth.RoleOwner}
	admin = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}
	guest = auth.Principal{UserID: "guest-1", Role: auth.RoleGuest}
)

func fixtures() []*Unit {
	return []*Unit{
		// Bucharest center
		{ID: "u1", OwnerID: "owner-1", Name: "Old Town Loft", Location: "lipscani 10, bucuresti", Latitude: ptr(44.4323), Longitude: ptr(26.1009), PricePerNight: 80, Capacity: 2, Available: true},
		// Snagov, about 35 km north
		{ID: "u2", OwnerID: "owner-1", Name: "Lake Cabin", Location: "snagov 1", Latitude: ptr(44.7000), Longitude: ptr(26.1800), PricePerNight: 120, Capacity: 6, Available: true},
		// No coordinates
		{ID: "u3", OwnerID: "owner-2", Name: "Hidden Studio", Location: "unknown street 3", Latitude: nil, Longitude: nil, PricePerNight: 50, Capacity: 2, Available: true},
		// Brasov
		{ID: "u4", OwnerID: "owner-2", Name: "Mountain Chalet", Location: "poiana brasov 4", Latitude: ptr(45.6427), Longitude: ptr(25.5887), PricePerNight: 200, Capacity: 8, Available: true},
	}
}

func newTestService(src stubSource) (*service, *fakeRepo) {
	repo := newFakeRepo(fixtures()...)
	return &service{repo: repo, checker: availability.NewChecker(src)}, repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(stubSource{})
	ctx := context.Background()

	t.Run("owner creates for self", func(t *testing.T) {
		u, err := svc.Create(ctx, owner, CreateUnitRequest{
			OwnerID:       "someone-else",
			Name:          " Sea View ",
			Location:      "Strada Mării 5, Constanța",
			PricePerNight: 90,
			Capacity:      3,
		})
		require.NoError(t, err)
		assert.Equal(t, "owner-1", u.OwnerID)
		assert.Equal(t, "Sea View", u.Name)
		assert.True(t, u.Available)
		assert.NotNil(t, u.Images)
	})

	t.Run("admin may pick the owner", func(t *testing.T) {
		u, err := svc.Create(ctx, admin, CreateUnitRequest{
			OwnerID: "owner-2", Name: "Villa", Location: "Villa Road 1", PricePerNight: 300, Capacity: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, "owner-2", u.OwnerID)
	})

	t.Run("guest is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, guest, CreateUnitRequest{Name: "X", Location: "Y 1", PricePerNight: 1, Capacity: 1})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("duplicate location ignores case diacritics and spacing", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, CreateUnitRequest{
			Name: "Copy", Location: "  STRADA  MARII 5, constanta ", PricePerNight: 90, Capacity: 3,
		})
		assert.ErrorIs(t, err, ErrLocationTaken)
	})

	tests := []struct {
		name string
		req  CreateUnitRequest
		want error
	}{
		{"blank name", CreateUnitRequest{Name: "  ", Location: "a", PricePerNight: 1, Capacity: 1}, ErrNameRequired},
		{"blank location", CreateUnitRequest{Name: "a", Location: " ", PricePerNight: 1, Capacity: 1}, ErrLocationRequired},
		{"zero price", CreateUnitRequest{Name: "a", Location: "b", Capacity: 1}, ErrInvalidPrice},
		{"zero capacity", CreateUnitRequest{Name: "a", Location: "b", PricePerNight: 1}, ErrInvalidCapacity},
		{"half coordinates", CreateUnitRequest{Name: "a", Location: "b", PricePerNight: 1, Capacity: 1, Latitude: ptr(45.0)}, ErrCoordinatesPair},
		{"latitude out of range", CreateUnitRequest{Name: "a", Location: "b", PricePerNight: 1, Capacity: 1, Latitude: ptr(91.0), Longitude: ptr(0.0)}, ErrInvalidCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc, repo := newTestService(stubSource{})
	ctx := context.Background()

	t.Run("other owner cannot update", func(t *testing.T) {
		_, err := svc.Update(ctx, other, "u1", UpdateUnitRequest{Name: ptr("Mine now")})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("keeping own location is not a conflict", func(t *testing.T) {
		u, err := svc.Update(ctx, owner, "u1", UpdateUnitRequest{
			Location:      ptr("Lipscani 10, București"),
			PricePerNight: ptr(95.0),
		})
		require.NoError(t, err)
		assert.Equal(t, 95.0, u.PricePerNight)
	})

	t.Run("moving onto another unit's location conflicts", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, "u1", UpdateUnitRequest{Location: ptr("Snagov 1")})
		assert.ErrorIs(t, err, ErrLocationTaken)
	})

	t.Run("clear coordinates", func(t *testing.T) {
		u, err := svc.Update(ctx, admin, "u2", UpdateUnitRequest{ClearCoords: true})
		require.NoError(t, err)
		assert.Nil(t, u.Latitude)
		assert.Nil(t, u.Longitude)
	})

	t.Run("missing unit", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, "nope", UpdateUnitRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, other, "u1"), ErrPermissionDenied)
		require.NoError(t, svc.Delete(ctx, owner, "u1"))
		_, ok := repo.units["u1"]
		assert.False(t, ok)
	})
}

func TestService_Availability(t *testing.T) {
	src := stubSource{bookings: map[string][]availability.Period{
		"u1": {{ID: "b1", Kind: availability.KindBooking, CheckIn: day("2025-07-01"), CheckOut: day("2025-07-05")}},
	}}
	svc, _ := newTestService(src)
	ctx := context.Background()

	ok, err := svc.Availability(ctx, "u1", day("2025-07-04"), day("2025-07-08"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Availability(ctx, "u1", day("2025-07-05"), day("2025-07-08"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Availability(ctx, "u1", day("2025-07-08"), day("2025-07-05"))
	assert.ErrorIs(t, err, availability.ErrInvalidRange)

	_, err = svc.Availability(ctx, "missing", day("2025-07-01"), day("2025-07-02"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Search(t *testing.T) {
	src := stubSource{bookings: map[string][]availability.Period{
		"u2": {{ID: "b1", Kind: availability.KindBooking, CheckIn: day("2025-08-01"), CheckOut: day("2025-08-10")}},
	}}
	svc, _ := newTestService(src)
	ctx := context.Background()

	t.Run("without dates lists everything", func(t *testing.T) {
		units, total, err := svc.Search(ctx, SearchFilter{Filter: Filter{Page: 1, PageSize: 10}})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Len(t, units, 4)
	})

	t.Run("dates drop booked units", func(t *testing.T) {
		units, total, err := svc.Search(ctx, SearchFilter{
			Filter:   Filter{Page: 1, PageSize: 2},
			CheckIn:  ptr(day("2025-08-05")),
			CheckOut: ptr(day("2025-08-07")),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, units, 2)
		assert.Equal(t, "u1", units[0].ID)
		assert.Equal(t, "u3", units[1].ID)
	})

	t.Run("one date only", func(t *testing.T) {
		_, _, err := svc.Search(ctx, SearchFilter{CheckIn: ptr(day("2025-08-05"))})
		assert.ErrorIs(t, err, availability.ErrDatesIncomplete)
	})
}

func TestService_Nearby(t *testing.T) {
	svc, _ := newTestService(stubSource{})
	ctx := context.Background()

	t.Run("nearest first within radius", func(t *testing.T) {
		hits, err := svc.Nearby(ctx, NearbyQuery{City: "București", RadiusKm: 50})
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "u1", hits[0].Unit.ID)
		assert.Equal(t, "u2", hits[1].Unit.ID)
		assert.Less(t, hits[0].DistanceKm, hits[1].DistanceKm)
	})

	t.Run("units without coordinates never match", func(t *testing.T) {
		hits, err := svc.Nearby(ctx, NearbyQuery{City: "Bucuresti", RadiusKm: 20000})
		require.NoError(t, err)
		for _, h := range hits {
			assert.NotEqual(t, "u3", h.Unit.ID)
		}
		assert.Len(t, hits, 3)
	})

	t.Run("unknown city", func(t *testing.T) {
		_, err := svc.Nearby(ctx, NearbyQuery{City: "Atlantis", RadiusKm: 10})
		assert.ErrorIs(t, err, geo.ErrUnknownCity)
	})

	t.Run("negative radius", func(t *testing.T) {
		_, err := svc.Nearby(ctx, NearbyQuery{City: "Brasov", RadiusKm: -1})
		assert.ErrorIs(t, err, geo.ErrInvalidRadius)
	})
}

func TestService_AdvancedSearch(t *testing.T) {
	src := stubSource{bookings: map[string][]availability.Period{
		"u1": {{ID: "b1", Kind: availability.KindBooking, CheckIn: day("2025-09-01"), CheckOut: day("2025-09-03")}},
	}}
	svc, _ := newTestService(src)

	hits, err := svc.AdvancedSearch(context.Background(), NearbyQuery{
		Filter:   Filter{Guests: 2},
		City:     "Bucuresti",
		RadiusKm: 50,
		CheckIn:  ptr(day("2025-09-02")),
		CheckOut: ptr(day("2025-09-04")),
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "u2", hits[0].Unit.ID)

	hits, err = svc.AdvancedSearch(context.Background(), NearbyQuery{
		Filter:   Filter{Guests: 7},
		City:     "Bucuresti",
		RadiusKm: 500,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "u4", hits[0].Unit.ID)
}
