package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/owner-applications")

	// === Public Routes ===
	group.POST("/review-by-token", h.ReviewByToken)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.POST("", h.Submit)
		authed.GET("/me", h.Mine)
		authed.GET("/:id", h.Get)
	}

	// === Admin Routes ===
	admin := group.Group("", authMiddleware, adminMiddleware)
	{
		admin.GET("", h.List)
		admin.POST("/:id/approve", h.Approve)
		admin.POST("/:id/reject", h.Reject)
	}
}
