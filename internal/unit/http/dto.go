package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/unit"
)

type UnitResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	OwnerName     string    `json:"owner_name"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	County        *string   `json:"county"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	PricePerNight float64   `json:"price_per_night"`
	Capacity      int       `json:"capacity"`
	Available     bool      `json:"available"`
	Type          string    `json:"type"`
	Images        []string  `json:"images"`
	Amenities     []string  `json:"amenities"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	TotalBookings int       `json:"total_bookings"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewUnitResponse(u *unit.Unit) UnitResponse {
	return UnitResponse{
		ID:            u.ID,
		OwnerID:       u.OwnerID,
		OwnerName:     u.OwnerName,
		Name:          u.Name,
		Description:   u.Description,
		Location:      u.Location,
		County:        u.County,
		Latitude:      u.Latitude,
		Longitude:     u.Longitude,
		PricePerNight: u.PricePerNight,
		Capacity:      u.Capacity,
		Available:     u.Available,
		Type:          u.Type,
		Images:        u.Images,
		Amenities:     u.Amenities,
		Rating:        u.Rating,
		ReviewCount:   u.ReviewCount,
		TotalBookings: u.TotalBookings,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type NearbyUnitResponse struct {
	UnitResponse
	DistanceKm float64 `json:"distance_km"`
}

type NearbyResponse struct {
	City     string               `json:"city"`
	RadiusKm float64              `json:"radius_km"`
	Items    []NearbyUnitResponse `json:"items"`
}

func NewNearbyResponse(city string, radius float64, hits []unit.NearbyUnit) NearbyResponse {
	items := make([]NearbyUnitResponse, len(hits))
	for i, h := range hits {
		items[i] = NearbyUnitResponse{UnitResponse: NewUnitResponse(h.Unit), DistanceKm: h.DistanceKm}
	}
	return NearbyResponse{City: city, RadiusKm: radius, Items: items}
}

type AvailabilityResponse struct {
	UnitID    string `json:"unit_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

type CreateUnitRequest struct {
	OwnerID       string   `json:"owner_id" binding:"omitempty,uuid"`
	Name          string   `json:"name" binding:"required,notblank"`
	Description   string   `json:"description"`
	Location      string   `json:"location" binding:"required,notblank"`
	County        *string  `json:"county"`
	Latitude      *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	PricePerNight float64  `json:"price_per_night" binding:"required,gt=0"`
	Capacity      int      `json:"capacity" binding:"required,min=1"`
	Available     *bool    `json:"available"`
	Type          string   `json:"type"`
	Images        []string `json:"images" binding:"omitempty,dive,url"`
	Amenities     []string `json:"amenities"`
}

type UpdateUnitRequest struct {
	Name          *string  `json:"name" binding:"omitempty,notblank"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location" binding:"omitempty,notblank"`
	County        *string  `json:"county"`
	Latitude      *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude     *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	ClearCoords   bool     `json:"clear_coordinates"`
	PricePerNight *float64 `json:"price_per_night" binding:"omitempty,gt=0"`
	Capacity      *int     `json:"capacity" binding:"omitempty,min=1"`
	Available     *bool    `json:"available"`
	Type          *string  `json:"type"`
	Images        []string `json:"images" binding:"omitempty,dive,url"`
	Amenities     []string `json:"amenities"`
}

// ListUnitsRequest holds the query parameters shared by listing and search endpoints.
type ListUnitsRequest struct {
	request.ListParams
	OwnerID   string   `form:"owner_id" binding:"omitempty,uuid"`
	County    string   `form:"county"`
	Type      string   `form:"type"`
	Keyword   string   `form:"q"`
	MinPrice  *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Guests    int      `form:"guests" binding:"omitempty,min=1"`
	Available *bool    `form:"available"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=created_at price_per_night capacity name"`
}

func (r ListUnitsRequest) toFilter() unit.Filter {
	order := "DESC"
	if r.SortOrder == "asc" || r.SortOrder == "ASC" {
		order = "ASC"
	}
	return unit.Filter{
		OwnerID:   r.OwnerID,
		County:    r.County,
		Type:      r.Type,
		Keyword:   r.Keyword,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		Guests:    r.Guests,
		Available: r.Available,
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortBy:    r.SortBy,
		SortOrder: order,
	}
}

// DateRangeQuery carries optional check-in and check-out query parameters.
type DateRangeQuery struct {
	CheckIn  string `form:"check_in" binding:"omitempty,date"`
	CheckOut string `form:"check_out" binding:"omitempty,date"`
}

func (q DateRangeQuery) parse() (checkIn, checkOut *time.Time, err error) {
	if checkIn, err = request.ParseOptionalDate(q.CheckIn); err != nil {
		return nil, nil, err
	}
	if checkOut, err = request.ParseOptionalDate(q.CheckOut); err != nil {
		return nil, nil, err
	}
	return checkIn, checkOut, nil
}

type SearchUnitsRequest struct {
	ListUnitsRequest
	DateRangeQuery
}

type AvailabilityRequest struct {
	CheckIn  string `form:"check_in" binding:"required,date"`
	CheckOut string `form:"check_out" binding:"required,date"`
}

type NearbyRequest struct {
	ListUnitsRequest
	City     string  `form:"city" binding:"required,notblank"`
	RadiusKm float64 `form:"radius_km,default=10" binding:"gte=0"`
}

type AdvancedSearchRequest struct {
	NearbyRequest
	DateRangeQuery
}

// UnitTag is the compact unit reference embedded in booking and reservation responses.
type UnitTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
