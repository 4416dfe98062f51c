package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/creditx/creditx-server/internal/interfaces/httpserver/handlers"
)

func registerApplicationRoutes(router gin.IRoutes, apps *handlers.ApplicationHandler, chat *handlers.ChatHandler) {
	router.POST("/applications", apps.Submit)
	router.GET("/applications", apps.List)
	router.GET("/applications/:request_id", apps.Get)
	router.PATCH("/applications/:request_id/status", apps.UpdateStatus)

	router.POST("/applications/:request_id/chat", chat.Ask)
	router.GET("/applications/:request_id/conversation", chat.History)
}
