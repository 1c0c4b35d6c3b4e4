// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetChatRatePerMinute() int
}

// SessionConfig provides settings for the widget session tokens.
type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq dispatch queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// TelegramConfig provides the process-wide default bot credentials.
// Tenants without their own bot token fall back to these.
type TelegramConfig interface {
	GetDefaultBotToken() string
	GetDefaultManagerChatID() int64
	GetTelegramCompanyID() int64
}

// SMTPConfig provides the process-wide default mail credentials.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetDefaultNotifyEmail() string
}

// OracleConfig provides the process-wide default AI endpoint.
// Tenants without their own endpoint/key fall back to these.
type OracleConfig interface {
	GetOracleBaseURL() string
	GetOracleAPIKey() string
	GetOracleModel() string
	GetOracleTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	CORSAllowAll      bool
	CORSOrigins       []string
	ChatRatePerMinute int
	SessionSecret     string
	SessionTTL        time.Duration
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	BotToken          string
	ManagerChatID     int64
	TelegramCompanyID int64
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	EmailFromName     string
	EmailFromAddress  string
	NotifyEmail       string
	OracleBaseURL     string
	OracleAPIKey      string
	OracleModel       string
	OracleTimeout     time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetChatRatePerMinute() int   { return c.ChatRatePerMinute }

// SessionConfig implementation
func (c *Config) GetSessionSecret() string      { return c.SessionSecret }
func (c *Config) GetSessionTTL() time.Duration  { return c.SessionTTL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// TelegramConfig implementation
func (c *Config) GetDefaultBotToken() string      { return c.BotToken }
func (c *Config) GetDefaultManagerChatID() int64  { return c.ManagerChatID }
func (c *Config) GetTelegramCompanyID() int64     { return c.TelegramCompanyID }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string      { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string   { return c.EmailFromAddress }
func (c *Config) GetDefaultNotifyEmail() string { return c.NotifyEmail }

// OracleConfig implementation
func (c *Config) GetOracleBaseURL() string        { return c.OracleBaseURL }
func (c *Config) GetOracleAPIKey() string         { return c.OracleAPIKey }
func (c *Config) GetOracleModel() string          { return c.OracleModel }
func (c *Config) GetOracleTimeout() time.Duration { return c.OracleTimeout }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		ChatRatePerMinute: mustInt(getEnv("CHAT_RATE_PER_MINUTE", "30")),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        mustDuration(getEnv("SESSION_TTL", "24h")),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		BotToken:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		ManagerChatID:     mustInt64(getEnv("TELEGRAM_MANAGER_CHAT_ID", "0")),
		TelegramCompanyID: mustInt64(getEnv("TELEGRAM_COMPANY_ID", "1")),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Assist"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		NotifyEmail:       getEnv("NOTIFY_EMAIL", ""),
		OracleBaseURL:     getEnv("ORACLE_BASE_URL", ""),
		OracleAPIKey:      getEnv("ORACLE_API_KEY", ""),
		OracleModel:       getEnv("ORACLE_MODEL", "gpt-4o-mini"),
		OracleTimeout:     mustDuration(getEnv("ORACLE_TIMEOUT", "30s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.OracleAPIKey == "" {
		return nil, fmt.Errorf("ORACLE_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
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
