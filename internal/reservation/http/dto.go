package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
	unitHttp "github.com/nekogravitycat/stay-booking-backend/internal/unit/http"
	userHttp "github.com/nekogravitycat/stay-booking-backend/internal/user/http"
)

type ReservationResponse struct {
	ID        string           `json:"id"`
	Unit      unitHttp.UnitTag `json:"unit"`
	User      userHttp.UserTag `json:"user"`
	CheckIn   string           `json:"check_in"`
	CheckOut  string           `json:"check_out"`
	Guests    int              `json:"guests"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Unit:      unitHttp.UnitTag{ID: r.UnitID, Name: r.UnitName},
		User:      userHttp.UserTag{ID: r.UserID, Name: r.UserName, Email: r.UserEmail},
		CheckIn:   request.FormatDate(r.CheckIn),
		CheckOut:  request.FormatDate(r.CheckOut),
		Guests:    r.Guests,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type CreateReservationRequest struct {
	UnitID   string `json:"unit_id" binding:"required,uuid"`
	CheckIn  string `json:"check_in" binding:"required,date"`
	CheckOut string `json:"check_out" binding:"required,date"`
	Guests   int    `json:"guests" binding:"required,min=1"`
}

type UpdateReservationRequest struct {
	Status string `json:"status" binding:"required,oneof=CONFIRMED CANCELLED"`
}

type ListReservationsRequest struct {
	request.ListParams
	Scope  string `form:"scope,default=mine" binding:"oneof=mine owned"`
	UnitID string `form:"unit_id" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}
