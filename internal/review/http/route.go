package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	trips := g.Group("/trips/:id/reviews")
	{
		// === Public Routes ===
		trips.GET("", h.ListByTrip)
		trips.GET("/summary", h.Summary)

		// === Authenticated Routes ===
		authed := trips.Group("")
		authed.Use(authMiddleware)
		{
			authed.POST("", h.Create)
		}
	}

	reviews := g.Group("/reviews")
	reviews.Use(authMiddleware)
	{
		reviews.PATCH("/:id", h.Update)
		reviews.DELETE("/:id", h.Delete)
	}
}
