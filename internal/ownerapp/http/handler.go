package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/ownerapp"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	service ownerapp.Service
}

func NewHandler(service ownerapp.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.Submit(c.Request.Context(), auth.GetPrincipal(c), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewApplicationResponse(a))
}

func (h *Handler) Mine(c *gin.Context) {
	a, err := h.service.Mine(c.Request.Context(), auth.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewApplicationResponse(a))
}

func (h *Handler) List(c *gin.Context) {
	var req ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	apps, total, err := h.service.List(c.Request.Context(), auth.GetPrincipal(c), ownerapp.Filter{
		Status:    ownerapp.Status(req.Status),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		items[i] = NewApplicationResponse(a)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid application id", err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), auth.GetPrincipal(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewApplicationResponse(a))
}

func (h *Handler) Approve(c *gin.Context) {
	h.review(c, true)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, false)
}

func (h *Handler) review(c *gin.Context, approve bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid application id", err)
		return
	}
	// Notes are optional, so is the body.
	var req ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	a, err := h.service.Review(c.Request.Context(), auth.GetPrincipal(c), uri.ID, approve, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewApplicationResponse(a))
}

// ReviewByToken lets the holder of an approval link decide without logging in.
func (h *Handler) ReviewByToken(c *gin.Context) {
	var req ReviewByTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.ReviewByToken(c.Request.Context(), req.Token, req.Decision == "APPROVE", req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewApplicationResponse(a))
}
