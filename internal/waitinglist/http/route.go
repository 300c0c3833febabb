package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	trips := g.Group("/trips/:id/waiting-list")
	trips.Use(authMiddleware)
	{
		trips.POST("", h.Join)
		trips.DELETE("", h.Leave)
		trips.GET("/me", h.MyStatus)

		admin := trips.Group("")
		admin.Use(adminMiddleware)
		{
			admin.GET("", h.TripQueue)
			admin.DELETE("/entries", h.Clear)
			admin.POST("/notify-next", h.NotifyNext)
		}
	}

	entries := g.Group("/waiting-list/entries")
	entries.Use(authMiddleware, adminMiddleware)
	{
		entries.DELETE("/:id", h.RemoveEntry)
	}
}
