package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin/settings")

	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.GET("", h.Get)
		group.PUT("", h.Update)
	}
}
