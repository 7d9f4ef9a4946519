package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/review"
)

type Handler struct {
	service review.Service
}

func NewHandler(service review.Service) *Handler {
	return &Handler{service: service}
}

// ListForUnit returns the reviews of the unit in the path.
func (h *Handler) ListForUnit(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req ListReviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list, total, err := h.service.List(c.Request.Context(), review.Filter{
		UnitID:    uri.ID,
		MinRating: req.MinRating,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReviewResponse, len(list))
	for i, r := range list {
		items[i] = NewReviewResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), auth.GetPrincipal(c), review.CreateRequest{
		UnitID:  uri.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewReviewResponse(r))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid review id", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReviewResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid review id", err)
		return
	}
	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), auth.GetPrincipal(c), uri.ID, review.UpdateRequest{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReviewResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid review id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetPrincipal(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
