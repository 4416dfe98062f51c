package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/creditx/creditx-server/internal/interfaces/httpserver/handlers"
)

func registerProfileRoutes(router gin.IRoutes, handler *handlers.ProfileHandler) {
	router.POST("/profiles", handler.Save)
	router.GET("/profiles/:applicant_id", handler.Get)
	router.POST("/profiles/:applicant_id/advice", handler.Advise)
}
