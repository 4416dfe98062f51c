package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/creditx/creditx-server/internal/interfaces/httpserver/handlers"
)

func registerAnalysisRoutes(router gin.IRoutes, handler *handlers.AnalysisHandler) {
	router.POST("/expense-analysis", handler.AnalyzeStatement)
	router.POST("/welfare/eligibility", handler.ExtractEligibility)
	router.GET("/welfare/eligibility", handler.ExtractEligibility)
}
