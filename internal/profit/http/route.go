package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers revenue reporting routes. All of them require authentication;
// ownership is checked by the service.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	units := g.Group("/units/:id/profit", authMiddleware)
	{
		units.GET("", h.UnitTotal)
		units.GET("/monthly", h.UnitMonthly)
		units.GET("/forecast", h.UnitForecast)
	}

	owners := g.Group("/owners/:id/profit", authMiddleware)
	{
		owners.GET("", h.OwnerTotal)
		owners.GET("/monthly", h.OwnerMonthly)
		owners.GET("/forecast", h.OwnerForecast)
	}
}
