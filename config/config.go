package config

import "os"

type Config struct {
	DBFile     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
}

// LoadConfig reads configuration from environment variables.
// DB_FILE selects the embedded sqlite store (default arsip.db);
// setting DB_HOST switches the server to postgres instead.
func LoadConfig() Config {
	cfg := Config{
		DBFile:     os.Getenv("DB_FILE"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
	}
	if cfg.DBFile == "" {
		cfg.DBFile = "arsip.db"
	}
	return cfg
}
