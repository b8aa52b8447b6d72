package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"arsip-api/config"
	"arsip-api/internal/logs"
	"arsip-api/internal/middlewares"
	"arsip-api/internal/util"
)

type AuthController struct {
	AuthService *AuthService
	LogService  *logs.LogService
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.AuthService.GetUser(req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Username atau password salah"})
		return
	}

	if err := util.VerifyPassword(req.Password, user.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Username atau password salah"})
		return
	}

	cfg := config.LoadConfig()

	exp := time.Now().Add(12 * time.Hour)
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     exp.Unix(),
	})
	accessTokenString, _ := accessToken.SignedString([]byte(cfg.JWTSecret))

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    accessTokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	entry := logs.LogAktivitas{
		UserID:  user.ID,
		Aksi:    logs.AksiLogin,
		Entitas: "users",
		Detail:  fmt.Sprintf("Login: %s", user.Username),
	}
	if err := ac.LogService.Log(entry); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login berhasil",
		"data": LoginResponse{
			ID:       user.ID,
			Nama:     user.Nama,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.AuthService.GetUserByID(middlewares.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": LoginResponse{
			ID:       user.ID,
			Nama:     user.Nama,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}
