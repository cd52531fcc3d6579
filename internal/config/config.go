package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	BranchCode         string
	BranchName         string
	DatabaseURL        string
	CentralDatabaseURL string
	JWTSecret          string
	JWTExpirySeconds   int64
	TaxRate            float64
	Currency           string
	RabbitMQURL        string
	RabbitMQWorkerMode string
	StaffSyncInterval  time.Duration
	CorsAllowedOrigins []string
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8090"),
		BranchCode:         getEnv("BRANCH_CODE", "HQ"),
		BranchName:         getEnv("BRANCH_NAME", "Head Office"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CentralDatabaseURL: getEnv("CENTRAL_DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:   getEnvInt64("JWT_EXPIRY", 3600),
		TaxRate:            getEnvFloat64("TAX_RATE", 0.15),
		Currency:           getEnv("CURRENCY", "USD"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		StaffSyncInterval:  getEnvDuration("STAFF_SYNC_INTERVAL", time.Hour),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		cfg.TaxRate = 0.15
	}
	if cfg.StaffSyncInterval < time.Minute {
		cfg.StaffSyncInterval = time.Hour
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat64(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
