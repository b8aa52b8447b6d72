package dashboard

import (
	"github.com/gin-gonic/gin"

	"arsip-api/internal/middlewares"
)

func RegisterRoutes(r *gin.Engine, service *DashboardService) {
	controller := &DashboardController{DashboardService: service}

	group := r.Group("/api/dashboard")
	group.Use(middlewares.AuthMiddleware())
	{
		group.GET("", controller.GetSummary)
	}
}
