package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	checkIn, _ := request.ParseDate(req.CheckIn)
	checkOut, _ := request.ParseDate(req.CheckOut)

	r, err := h.service.Create(c.Request.Context(), auth.GetPrincipal(c), reservation.CreateRequest{
		UnitID:   req.UnitID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

// List returns the caller's reservations (scope=mine) or those on units they own (scope=owned).
func (h *Handler) List(c *gin.Context) {
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), auth.GetPrincipal(c), reservation.Scope(req.Scope), reservation.Filter{
		UnitID:    req.UnitID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ReservationResponse, len(items))
	for i, r := range items {
		out[i] = NewReservationResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(out, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid reservation id", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), auth.GetPrincipal(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid reservation id", err)
		return
	}
	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.SetStatus(c.Request.Context(), auth.GetPrincipal(c), uri.ID, reservation.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(r))
}
