package arsip

import (
	"github.com/gin-gonic/gin"

	"arsip-api/internal/middlewares"
)

func RegisterRoutes(r *gin.Engine, rowService *RowService) {
	rowController := &RowController{RowService: rowService}

	group := r.Group("/api/arsip")
	group.Use(middlewares.AuthMiddleware())
	{
		group.GET("", rowController.ListArsip)
		group.POST("", rowController.CreateArsip)
		group.PUT("/:id", rowController.UpdateArsip)
		group.DELETE("/:id", rowController.DeleteArsip)
	}

	tabel := r.Group("/api/tabel/:jenisId")
	tabel.Use(middlewares.AuthMiddleware())
	{
		tabel.GET("/rows", rowController.TableRows)
		tabel.POST("/rows", rowController.InsertBatch)
		tabel.PUT("/rows/:rowId", rowController.UpdateRow)
		tabel.PUT("/batch", rowController.BatchUpdate)
		tabel.POST("/batch-delete", rowController.BatchDelete)
		tabel.POST("/set-column", rowController.SetColumn)
		tabel.POST("/import", rowController.Import)
		tabel.GET("/export", rowController.Export)
	}
}
