package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/compose", h.compose)
		api.POST("/inspect", h.inspect)
	}
}
