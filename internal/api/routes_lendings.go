package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/handlers"
)

func registerLendingRoutes(api *gin.RouterGroup, handler *handlers.LendingHandler) {
	group := api.Group("/lendings")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
