// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
// An empty secret disables authentication.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides settings for the asynq client, worker and cron.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueue() string
	GetAsynqConcurrency() int
	GetRescoreCron() string
	GetRescorePageSize() int
}

// ScoringConfig provides settings for the lead scoring engine.
type ScoringConfig interface {
	GetScoringWeightsFile() string
	GetScoringTargetRegions() []string
	GetScoringBatchWorkers() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketScoringReports() string
	IsMinIOEnabled() bool
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	IsEmailEnabled() bool
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetSalesAlertEmail() string
}

// PhoneConfig provides settings for phone number normalization.
type PhoneConfig interface {
	GetDefaultPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	RateLimitRPS             float64
	RateLimitBurst           int
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueue               string
	AsynqConcurrency         int
	RescoreCron              string
	RescorePageSize          int
	ScoringWeightsFile       string
	ScoringTargetRegions     []string
	ScoringBatchWorkers      int
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinioBucketScoringReport string
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	SMTPFrom                 string
	SalesAlertEmail          string
	DefaultPhoneRegion       string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueue() string     { return c.AsynqQueue }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetRescoreCron() string    { return c.RescoreCron }
func (c *Config) GetRescorePageSize() int   { return c.RescorePageSize }

// ScoringConfig implementation
func (c *Config) GetScoringWeightsFile() string     { return c.ScoringWeightsFile }
func (c *Config) GetScoringTargetRegions() []string { return c.ScoringTargetRegions }
func (c *Config) GetScoringBatchWorkers() int       { return c.ScoringBatchWorkers }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketScoringReports() string {
	return c.MinioBucketScoringReport
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string     { return c.SMTPFrom }
func (c *Config) IsEmailEnabled() bool    { return c.SMTPHost != "" && c.SMTPFrom != "" }

// NotificationConfig implementation
func (c *Config) GetSalesAlertEmail() string { return c.SalesAlertEmail }

// PhoneConfig implementation
func (c *Config) GetDefaultPhoneRegion() string { return c.DefaultPhoneRegion }

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := loadWithoutDatabase()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadOffline reads configuration for tools that never touch the database.
func LoadOffline() (*Config, error) {
	return loadWithoutDatabase()
}

func loadWithoutDatabase() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitRPS:             mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:           mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueue:               getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		RescoreCron:              getEnv("RESCORE_CRON", "@daily"),
		RescorePageSize:          mustInt(getEnv("RESCORE_PAGE_SIZE", "200")),
		ScoringWeightsFile:       getEnv("SCORING_WEIGHTS_FILE", ""),
		ScoringTargetRegions:     splitCSV(getEnv("SCORING_TARGET_REGIONS", "")),
		ScoringBatchWorkers:      mustInt(getEnv("SCORING_BATCH_WORKERS", "8")),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketScoringReport: getEnv("MINIO_BUCKET_SCORING_REPORTS", "scoring-reports"),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:                 getEnv("SMTP_FROM", ""),
		SalesAlertEmail:          getEnv("SALES_ALERT_EMAIL", ""),
		DefaultPhoneRegion:       strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.IsProduction() && cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required in production")
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
