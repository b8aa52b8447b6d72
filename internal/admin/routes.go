package admin

import (
	"github.com/gin-gonic/gin"

	"arsip-api/internal/middlewares"
)

func RegisterRoutes(r *gin.Engine, adminService *AdminService) {
	adminController := &AdminController{AdminService: adminService}

	group := r.Group("/api/admin")
	group.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		group.GET("/users", adminController.ListUsers)
		group.POST("/users", adminController.CreateUser)
		group.PUT("/users/:id", adminController.UpdateUser)
		group.DELETE("/users/:id", adminController.DeleteUser)
		group.GET("/backup", adminController.Backup)
	}
}
