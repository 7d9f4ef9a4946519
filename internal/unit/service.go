package unit

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/geo"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/textnorm"
)

// CreateUnitRequest carries data to create a unit.
type CreateUnitRequest struct {
	// OwnerID is honoured for admins only; owners always create for themselves.
	OwnerID       string
	Name          string
	Description   string
	Location      string
	County        *string
	Latitude      *float64
	Longitude     *float64
	PricePerNight float64
	Capacity      int
	Available     *bool
	Type          string
	Images        []string
	Amenities     []string
}

// UpdateUnitRequest carries data for partial updates.
type UpdateUnitRequest struct {
	Name          *string
	Description   *string
	Location      *string
	County        *string
	Latitude      *float64
	Longitude     *float64
	ClearCoords   bool
	PricePerNight *float64
	Capacity      *int
	Available     *bool
	Type          *string
	Images        []string
	Amenities     []string
}

// AvailabilityChecker is the part of availability.Checker the unit service needs.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, unitID string, checkIn, checkOut time.Time) (bool, error)
	FilterAvailable(ctx context.Context, unitIDs []string, checkIn, checkOut time.Time) ([]string, error)
}

type Service interface {
	Create(ctx context.Context, p auth.Principal, req CreateUnitRequest) (*Unit, error)
	GetByID(ctx context.Context, id string) (*Unit, error)
	List(ctx context.Context, filter Filter) ([]*Unit, int, error)
	Update(ctx context.Context, p auth.Principal, id string, req UpdateUnitRequest) (*Unit, error)
	Delete(ctx context.Context, p auth.Principal, id string) error

	Availability(ctx context.Context, unitID string, checkIn, checkOut time.Time) (bool, error)
	Search(ctx context.Context, filter SearchFilter) ([]*Unit, int, error)
	Nearby(ctx context.Context, q NearbyQuery) ([]NearbyUnit, error)
	AdvancedSearch(ctx context.Context, q NearbyQuery) ([]NearbyUnit, error)
}

type service struct {
	repo    Repository
	checker AvailabilityChecker
}

func NewService(repo Repository, checker AvailabilityChecker) Service {
	return &service{repo: repo, checker: checker}
}

// validateUnit checks the logical rules for a Unit struct.
func validateUnit(u *Unit) error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(u.Location) == "" {
		return ErrLocationRequired
	}
	if u.PricePerNight <= 0 || math.IsNaN(u.PricePerNight) || math.IsInf(u.PricePerNight, 0) {
		return ErrInvalidPrice
	}
	if u.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if (u.Latitude == nil) != (u.Longitude == nil) {
		return ErrCoordinatesPair
	}
	if u.Latitude != nil {
		if *u.Latitude < -90 || *u.Latitude > 90 || *u.Longitude < -180 || *u.Longitude > 180 {
			return ErrInvalidCoordinates
		}
	}
	return nil
}

func (s *service) ensureLocationFree(ctx context.Context, key, excludeID string) error {
	taken, err := s.repo.LocationTaken(ctx, key, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrLocationTaken
	}
	return nil
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateUnitRequest) (*Unit, error) {
	ownerID := p.UserID
	if p.IsAdmin() && req.OwnerID != "" {
		ownerID = req.OwnerID
	}
	if p.Role != auth.RoleOwner && !p.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	u := &Unit{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Location:      strings.TrimSpace(req.Location),
		County:        req.County,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		Available:     available,
		Type:          req.Type,
		Images:        nonNil(req.Images),
		Amenities:     nonNil(req.Amenities),
	}
	if err := validateUnit(u); err != nil {
		return nil, err
	}

	key := textnorm.Fold(u.Location)
	if err := s.ensureLocationFree(ctx, key, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u, key); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, u.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Unit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Unit, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id string, req UpdateUnitRequest) (*Unit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(u.OwnerID) {
		return nil, ErrPermissionDenied
	}

	// Apply non-nil fields
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		u.Description = *req.Description
	}
	if req.Location != nil {
		u.Location = strings.TrimSpace(*req.Location)
	}
	if req.County != nil {
		u.County = req.County
	}
	if req.ClearCoords {
		u.Latitude, u.Longitude = nil, nil
	}
	if req.Latitude != nil {
		u.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		u.Longitude = req.Longitude
	}
	if req.PricePerNight != nil {
		u.PricePerNight = *req.PricePerNight
	}
	if req.Capacity != nil {
		u.Capacity = *req.Capacity
	}
	if req.Available != nil {
		u.Available = *req.Available
	}
	if req.Type != nil {
		u.Type = *req.Type
	}
	if req.Images != nil {
		u.Images = req.Images
	}
	if req.Amenities != nil {
		u.Amenities = req.Amenities
	}

	if err := validateUnit(u); err != nil {
		return nil, err
	}

	key := textnorm.Fold(u.Location)
	if err := s.ensureLocationFree(ctx, key, u.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u, key); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanManage(u.OwnerID) {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Availability(ctx context.Context, unitID string, checkIn, checkOut time.Time) (bool, error) {
	if err := availability.ValidateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := s.repo.GetByID(ctx, unitID); err != nil {
		return false, err
	}
	return s.checker.IsAvailable(ctx, unitID, checkIn, checkOut)
}

// Search lists units matching filter. When both dates are given only units
// free for the whole range are returned and pagination is applied after the
// date filter.
func (s *service) Search(ctx context.Context, filter SearchFilter) ([]*Unit, int, error) {
	checkIn, checkOut, err := dateRange(filter.CheckIn, filter.CheckOut)
	if err != nil {
		return nil, 0, err
	}
	if checkIn.IsZero() {
		return s.repo.List(ctx, filter.Filter)
	}

	all, err := s.repo.ListAll(ctx, filter.Filter)
	if err != nil {
		return nil, 0, err
	}
	free, err := s.freeUnits(ctx, all, checkIn, checkOut)
	if err != nil {
		return nil, 0, err
	}
	return paginate(free, filter.Page, filter.PageSize), len(free), nil
}

func (s *service) Nearby(ctx context.Context, q NearbyQuery) ([]NearbyUnit, error) {
	q.CheckIn, q.CheckOut = nil, nil
	return s.AdvancedSearch(ctx, q)
}

// AdvancedSearch combines proximity, attribute and date filtering. Results
// are ordered nearest first.
func (s *service) AdvancedSearch(ctx context.Context, q NearbyQuery) ([]NearbyUnit, error) {
	center, err := geo.Lookup(q.City)
	if err != nil {
		return nil, err
	}
	if err := geo.ValidateRadius(q.RadiusKm); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := dateRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}

	units, err := s.repo.ListAll(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	located := geo.FilterNearby(units, center, q.RadiusKm, (*Unit).Coordinates)

	if !checkIn.IsZero() {
		near := make([]*Unit, len(located))
		for i, l := range located {
			near[i] = l.Item
		}
		free, err := s.freeUnits(ctx, near, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(free))
		for _, u := range free {
			keep[u.ID] = true
		}
		filtered := located[:0]
		for _, l := range located {
			if keep[l.Item.ID] {
				filtered = append(filtered, l)
			}
		}
		located = filtered
	}

	out := make([]NearbyUnit, len(located))
	for i, l := range located {
		out[i] = NearbyUnit{Unit: l.Item, DistanceKm: l.DistanceKm}
	}
	return out, nil
}

func (s *service) freeUnits(ctx context.Context, units []*Unit, checkIn, checkOut time.Time) ([]*Unit, error) {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	freeIDs, err := s.checker.FilterAvailable(ctx, ids, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(freeIDs))
	for _, id := range freeIDs {
		keep[id] = true
	}
	out := make([]*Unit, 0, len(freeIDs))
	for _, u := range units {
		if keep[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

// dateRange returns zero times when no dates are given. A single date is an error.
func dateRange(checkIn, checkOut *time.Time) (time.Time, time.Time, error) {
	if checkIn == nil && checkOut == nil {
		return time.Time{}, time.Time{}, nil
	}
	if checkIn == nil || checkOut == nil {
		return time.Time{}, time.Time{}, availability.ErrDatesIncomplete
	}
	if err := availability.ValidateRange(*checkIn, *checkOut); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return *checkIn, *checkOut, nil
}

func paginate(units []*Unit, page, pageSize int) []*Unit {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(units) {
		return []*Unit{}
	}
	end := start + pageSize
	if end > len(units) {
		end = len(units)
	}
	return units[start:end]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
