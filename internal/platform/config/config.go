package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PIIFailClosed = "closed"
	PIIFailOpen   = "open"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	Environment         string
	ProviderBaseURL     string
	ProviderAPIKey      string
	ProviderModel       string
	ProviderTimeout     time.Duration
	PIIBudget           time.Duration
	PIIFailMode         string
	ExportTTL           time.Duration
	ExportDownloadLimit int
	RetentionInterval   time.Duration
	SeedTenantName      string
	RunMigrations       bool
	RunSeed             bool
	MetricsEnabled      bool
}

func Load() Config {
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		Environment:         getEnv("APP_ENV", "development"),
		ProviderBaseURL:     getEnv("PROVIDER_BASE_URL", "https://api.openai.com/v1"),
		ProviderAPIKey:      getEnv("PROVIDER_API_KEY", ""),
		ProviderModel:       getEnv("PROVIDER_MODEL", "gpt-4o-mini"),
		ProviderTimeout:     getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		PIIBudget:           getEnvDuration("PII_DETECTION_BUDGET", 50*time.Millisecond),
		PIIFailMode:         getEnv("PII_FAIL_MODE", PIIFailClosed),
		ExportTTL:           getEnvDuration("EXPORT_TTL", 7*24*time.Hour),
		ExportDownloadLimit: getEnvInt("EXPORT_DOWNLOAD_LIMIT", 3),
		RetentionInterval:   getEnvDuration("RETENTION_INTERVAL", 24*time.Hour),
		SeedTenantName:      getEnv("SEED_TENANT_NAME", "Default Tenant"),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.ProviderAPIKey) == "" {
			return fmt.Errorf("PROVIDER_API_KEY must be set in production")
		}
	}
	if c.PIIFailMode != PIIFailClosed && c.PIIFailMode != PIIFailOpen {
		return fmt.Errorf("PII_FAIL_MODE must be %q or %q", PIIFailClosed, PIIFailOpen)
	}
	if c.PIIBudget <= 0 {
		return fmt.Errorf("PII_DETECTION_BUDGET must be positive")
	}
	if c.ExportDownloadLimit <= 0 {
		return fmt.Errorf("EXPORT_DOWNLOAD_LIMIT must be positive")
	}
	if c.ExportTTL <= 0 {
		return fmt.Errorf("EXPORT_TTL must be positive")
	}
	return nil
}
