package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"arsip-api/config"
	"arsip-api/internal/admin"
	"arsip-api/internal/archivetype"
	"arsip-api/internal/arsip"
	"arsip-api/internal/auth"
	"arsip-api/internal/dashboard"
	"arsip-api/internal/logs"
)

func openDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.DBHost != "" {
		dsn := "host=" + cfg.DBHost +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" port=" + cfg.DBPort +
			" sslmode=disable"
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.DBFile), &gorm.Config{})
}

func main() {
	cfg := config.LoadConfig()

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&archivetype.JenisArsip{},
		&archivetype.SchemaConfig{},
		&archivetype.DefaultValue{},
		&arsip.Arsip{},
		&logs.LogAktivitas{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}
	logs.RegisterRoutes(r, logService)

	authService := &auth.AuthService{DB: db, CFG: &cfg}
	auth.RegisterRoutes(r, authService, logService)

	schemaService := &archivetype.SchemaService{DB: db, Logs: logService}
	archivetype.RegisterRoutes(r, schemaService)

	rowService := &arsip.RowService{DB: db, Schema: schemaService, Logs: logService}
	arsip.RegisterRoutes(r, rowService)

	dashboardService := &dashboard.DashboardService{DB: db}
	dashboard.RegisterRoutes(r, dashboardService)

	adminService := &admin.AdminService{DB: db, CFG: &cfg, Logs: logService}
	admin.RegisterRoutes(r, adminService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
