package archivetype

import (
	"github.com/gin-gonic/gin"

	"arsip-api/internal/middlewares"
)

func RegisterRoutes(r *gin.Engine, schemaService *SchemaService) {
	schemaController := &SchemaController{SchemaService: schemaService}

	group := r.Group("/api/jenis-arsip")
	group.Use(middlewares.AuthMiddleware())
	{
		group.GET("", schemaController.List)
		group.GET("/:id", schemaController.Get)
		group.POST("", schemaController.Create)
		group.PUT("/:id", schemaController.Update)
		group.DELETE("/:id", schemaController.Delete)
		group.GET("/:id/schema", schemaController.GetSchema)
		group.POST("/:id/sync-columns", schemaController.SyncColumns)
		group.PUT("/:id/defaults", schemaController.SetDefaults)
	}
}
