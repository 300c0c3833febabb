package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/users")

	// === Public Routes ===
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)

	// === Authenticated Routes ===
	me := group.Group("")
	me.Use(authMiddleware)
	{
		me.GET("/me", h.Me)
	}
}
