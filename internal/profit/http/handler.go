package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/profit"
)

type Handler struct {
	service profit.Service
}

func NewHandler(service profit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) UnitTotal(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	total, err := h.service.UnitTotal(c.Request.Context(), auth.GetPrincipal(c), uri.ID, req.MonthsBack)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, TotalResponse{MonthsBack: req.MonthsBack, Total: total})
}

func (h *Handler) UnitMonthly(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	months, err := h.service.UnitMonthly(c.Request.Context(), auth.GetPrincipal(c), uri.ID, req.MonthsBack)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, MonthlyResponse{MonthsBack: req.MonthsBack, Months: newSeries(months)})
}

func (h *Handler) UnitForecast(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	f, err := h.service.UnitForecast(c.Request.Context(), auth.GetPrincipal(c), uri.ID, req.MonthsBack, req.MonthsAhead)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewForecastResponse(f))
}

func (h *Handler) OwnerTotal(c *gin.Context) {
	ownerID, ok := resolveOwner(c)
	if !ok {
		return
	}
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	total, err := h.service.OwnerTotal(c.Request.Context(), auth.GetPrincipal(c), ownerID, req.MonthsBack)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, TotalResponse{MonthsBack: req.MonthsBack, Total: total})
}

func (h *Handler) OwnerMonthly(c *gin.Context) {
	ownerID, ok := resolveOwner(c)
	if !ok {
		return
	}
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	months, err := h.service.OwnerMonthly(c.Request.Context(), auth.GetPrincipal(c), ownerID, req.MonthsBack)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, MonthlyResponse{MonthsBack: req.MonthsBack, Months: newSeries(months)})
}

func (h *Handler) OwnerForecast(c *gin.Context) {
	ownerID, ok := resolveOwner(c)
	if !ok {
		return
	}
	var req ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	f, err := h.service.OwnerForecast(c.Request.Context(), auth.GetPrincipal(c), ownerID, req.MonthsBack, req.MonthsAhead)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewForecastResponse(f))
}

// resolveOwner maps the "me" alias to the caller and validates explicit IDs.
func resolveOwner(c *gin.Context) (string, bool) {
	var uri OwnerURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid owner id", err)
		return "", false
	}
	if uri.ID == "me" {
		return auth.GetUserID(c), true
	}
	if _, err := uuid.Parse(uri.ID); err != nil {
		response.BadRequest(c, "invalid owner id", err)
		return "", false
	}
	return uri.ID, true
}
