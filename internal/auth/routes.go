package auth

import (
	"github.com/gin-gonic/gin"

	"arsip-api/internal/logs"
	"arsip-api/internal/middlewares"
)

func RegisterRoutes(r *gin.Engine, authService *AuthService, logService *logs.LogService) {
	authController := &AuthController{AuthService: authService, LogService: logService}

	group := r.Group("/api/auth")
	{
		group.POST("/login", authController.Login)
		group.POST("/logout", authController.Logout)
		group.GET("/me", middlewares.AuthMiddleware(), authController.Me)
	}
}
