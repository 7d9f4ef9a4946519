package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// Create places a guest booking. No account is required.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	checkIn, _ := request.ParseDate(req.CheckIn)
	checkOut, _ := request.ParseDate(req.CheckOut)

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UnitID:     req.UnitID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		Guests:     req.Guests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	from, _ := request.ParseOptionalDate(req.From)
	to, _ := request.ParseOptionalDate(req.To)

	filter := booking.Filter{
		UnitID:     req.UnitID,
		Status:     req.Status,
		GuestEmail: strings.ToLower(req.GuestEmail),
		From:       from,
		To:         to,
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		SortOrder:  strings.ToUpper(req.SortOrder),
	}

	bookings, total, err := h.service.List(c.Request.Context(), auth.GetPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), auth.GetPrincipal(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Update changes dates, guest count or status. Status changes follow the booking lifecycle.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	update, err := req.toService()
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), auth.GetPrincipal(c), uri.ID, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetPrincipal(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
