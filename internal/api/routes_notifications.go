package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler, requireAuth gin.HandlerFunc) {
	group := api.Group("/notifications")
	{
		group.POST("/send-overdue", handler.SendOverdue)
		group.POST("/send-bulk-overdue", handler.SendBulk)
		group.POST("/test-email", handler.SendTest)
		group.GET("/stats", handler.Stats)
		group.GET("/history", handler.History)

		group.DELETE("/:id", requireAuth, handler.Delete)
		group.POST("/retry/:id", requireAuth, handler.Retry)
	}
}
