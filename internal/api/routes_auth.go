package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/handlers"
)

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	group := api.Group("/auth")
	{
		group.POST("/signup", handler.Signup)
		group.POST("/login", handler.Login)
		group.POST("/refresh-token", handler.Refresh)
	}
}
