package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *UnitHandler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/units")

	// === Public Routes ===
	{
		group.GET("", h.List)
		group.GET("/search", h.Search)
		group.GET("/nearby", h.Nearby)
		group.GET("/advanced-search", h.AdvancedSearch)
		group.GET("/cities", h.Cities)
		group.GET("/:id", h.Get)
		group.GET("/:id/availability", h.Availability)
	}

	// === Owner Routes ===
	managed := group.Group("", authMiddleware, auth.RequireRole(auth.RoleOwner, auth.RoleAdmin))
	{
		managed.POST("", h.Create)
		managed.PATCH("/:id", h.Update)
		managed.DELETE("/:id", h.Delete)
	}
}
