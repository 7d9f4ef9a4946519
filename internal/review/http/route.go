package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// Reviews hang off the unit they rate; :id is the unit ID here.
	unitReviews := g.Group("/units/:id/reviews")
	{
		unitReviews.GET("", h.ListForUnit)
		unitReviews.POST("", authMiddleware, h.Create)
	}

	group := g.Group("/reviews")
	{
		group.GET("/:id", h.Get)
		group.PATCH("/:id", authMiddleware, h.Update)
		group.DELETE("/:id", authMiddleware, h.Delete)
	}
}
