package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.POST("", h.Create)

	// === Authenticated Routes ===
	managed := group.Group("", authMiddleware)
	{
		managed.GET("", h.List)
		managed.GET("/:id", h.Get)
		managed.PATCH("/:id", h.Update)
		managed.DELETE("/:id", h.Delete)
	}
}
