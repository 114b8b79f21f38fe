package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/handlers"
)

func registerReaderRoutes(api *gin.RouterGroup, handler *handlers.ReaderHandler, requireAuth gin.HandlerFunc) {
	group := api.Group("/readers")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)

		group.GET("/:id", requireAuth, handler.Get)
		group.PUT("/:id", requireAuth, handler.Update)
		group.DELETE("/:id", requireAuth, handler.Delete)
	}
}
