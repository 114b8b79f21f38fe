package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/handlers"
)

func registerBookRoutes(api *gin.RouterGroup, handler *handlers.BookHandler) {
	group := api.Group("/books")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
