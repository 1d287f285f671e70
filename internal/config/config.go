package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the vendor import service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// GCP
	GCPProjectID string

	// Ikas vendor credentials (env overrides; Secret Manager is the fallback)
	IkasClientID     string
	IkasClientSecret string
	IkasBaseURL      string
	IkasVendorCode   string
	IkasVendorName   string

	// Import Settings
	ImportTimeout time.Duration

	// CORS
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() *Config {
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := getEnv("DB_PASSWORD", "postgres")
		dbName := getEnv("DB_NAME", "vendor_import")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8094"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		// GCP
		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),

		// Ikas
		IkasClientID:     getEnv("IKAS_CLIENT_ID", ""),
		IkasClientSecret: getEnv("IKAS_CLIENT_SECRET", ""),
		IkasBaseURL:      getEnv("IKAS_BASE_URL", ""),
		IkasVendorCode:   getEnv("IKAS_VENDOR_CODE", "ikas"),
		IkasVendorName:   getEnv("IKAS_VENDOR_NAME", "Ikas"),

		// Import Settings
		ImportTimeout: getEnvAsDuration("IMPORT_TIMEOUT", 15*time.Minute),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
	}

	// Validate required fields
	if config.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if config.GCPProjectID == "" && config.IkasClientSecret == "" {
		log.Println("Warning: neither GCP_PROJECT_ID nor IKAS_CLIENT_SECRET set, ikas imports will fail to authenticate")
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsSlice gets a comma-separated environment variable as a slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
