package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	unitHttp "github.com/nekogravitycat/stay-booking-backend/internal/unit/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	UnitID     string `form:"unit_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	GuestEmail string `form:"guest_email" binding:"omitempty,email"`
	From       string `form:"from" binding:"omitempty,date"`
	To         string `form:"to" binding:"omitempty,date"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=check_in created_at status"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != "" && r.To != "" && r.From >= r.To {
		return availability.ErrInvalidRange
	}
	return nil
}

type BookingResponse struct {
	ID         string           `json:"id"`
	Unit       unitHttp.UnitTag `json:"unit"`
	CheckIn    string           `json:"check_in"`
	CheckOut   string           `json:"check_out"`
	Nights     int              `json:"nights"`
	GuestName  string           `json:"guest_name"`
	GuestEmail string           `json:"guest_email"`
	GuestPhone string           `json:"guest_phone"`
	Guests     int              `json:"guests"`
	TotalPrice *float64         `json:"total_price"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		Unit:       unitHttp.UnitTag{ID: b.UnitID, Name: b.UnitName},
		CheckIn:    request.FormatDate(b.CheckIn),
		CheckOut:   request.FormatDate(b.CheckOut),
		Nights:     b.Nights(),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	UnitID     string `json:"unit_id" binding:"required,uuid"`
	CheckIn    string `json:"check_in" binding:"required,date"`
	CheckOut   string `json:"check_out" binding:"required,date"`
	GuestName  string `json:"guest_name" binding:"required,notblank,max=200"`
	GuestEmail string `json:"guest_email" binding:"required,email"`
	GuestPhone string `json:"guest_phone" binding:"omitempty,max=40"`
	Guests     int    `json:"guests" binding:"required,min=1"`
}

type UpdateBookingRequest struct {
	CheckIn  *string `json:"check_in" binding:"omitempty,date"`
	CheckOut *string `json:"check_out" binding:"omitempty,date"`
	Guests   *int    `json:"guests" binding:"omitempty,min=1"`
	Status   *string `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

func (r UpdateBookingRequest) toService() (booking.UpdateRequest, error) {
	var out booking.UpdateRequest
	if r.CheckIn != nil {
		d, err := request.ParseDate(*r.CheckIn)
		if err != nil {
			return out, err
		}
		out.CheckIn = &d
	}
	if r.CheckOut != nil {
		d, err := request.ParseDate(*r.CheckOut)
		if err != nil {
			return out, err
		}
		out.CheckOut = &d
	}
	out.Guests = r.Guests
	if r.Status != nil {
		st := booking.Status(*r.Status)
		out.Status = &st
	}
	return out, nil
}
