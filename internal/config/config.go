package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения
type Config struct {
	// Server
	Port string
	Host string
	Mode string

	// Database
	DatabaseDSN string

	// Security
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// MinIO
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Email
	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string
	FrontendURL    string

	// Default admin
	AdminEmail    string
	AdminPassword string

	// Uploads
	MaxUploadSize int64
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	_ = godotenv.Load()

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Host: getEnv("HOST", "0.0.0.0"),
		Mode: getEnv("APP_MODE", "dev"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=taubago password=taubago dbname=taubago port=5432 sslmode=disable"),

		JWTSecret:       getEnv("JWT_SECRET", "taubago_secret_key_2024"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "taubago-videos"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@taubago.kz"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "TauBaGo"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:9989"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@taubago.kz"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	// Парсим максимальный размер загружаемого файла
	if maxUploadSize, err := strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE", "524288000"), 10, 64); err == nil {
		config.MaxUploadSize = maxUploadSize
	} else {
		config.MaxUploadSize = 500 * 1024 * 1024 // 500MB по умолчанию
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration парсит duration из переменной окружения
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
