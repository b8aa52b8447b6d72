package dashboard

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"arsip-api/internal/apperr"
)

type DashboardController struct {
	DashboardService *DashboardService
}

func (dc *DashboardController) GetSummary(c *gin.Context) {
	summary, err := dc.DashboardService.GetSummary()
	if err != nil {
		status := apperr.Status(err)
		if status == http.StatusInternalServerError {
			log.Printf("dashboard: %v", err)
		}
		c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, summary)
}
