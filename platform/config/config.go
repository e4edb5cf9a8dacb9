// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cafe_bot_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultRestSearchURL = "https://api.gnavi.co.jp/RestSearchAPI/v3/"

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
}

// OutboundConfig provides settings shared by every outbound HTTP client.
type OutboundConfig interface {
	GetProxyURL() string
}

// SearchConfig provides settings for the restaurant search client.
type SearchConfig interface {
	GetRestSearchURL() string
	GetRestSearchAPIKey() string
	GetRestSearchTimeout() time.Duration
}

// LineConfig provides settings for the LINE messaging adapter.
type LineConfig interface {
	GetLineChannelSecret() string
	GetLineChannelAccessToken() string
	GetLineAPIEndpoint() string
}

// BotConfig provides settings for the event dispatcher and card formatter.
type BotConfig interface {
	GetBotServerURL() string
	GetReplyOnSearchError() bool
}

// WebhookConfig provides settings for the webhook boundary.
type WebhookConfig interface {
	GetRedisURL() string
	GetDedupTTL() time.Duration
	GetWebhookRateLimit() float64
	GetWebhookRateBurst() int
	IsDedupEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string        `validate:"required"`
	CORSOrigins            []string
	RestSearchURL          string        `validate:"required,url"`
	RestSearchAPIKey       string        `validate:"required"`
	RestSearchTimeout      time.Duration `validate:"gte=0"`
	LineChannelSecret      string        `validate:"required"`
	LineChannelAccessToken string        `validate:"required"`
	LineAPIEndpoint        string        `validate:"omitempty,url"`
	BotServerURL           string        `validate:"required,url"`
	ProxyURL               string        `validate:"required,url"`
	ReplyOnSearchError     bool
	RedisURL               string
	DedupTTL               time.Duration `validate:"gte=0"`
	WebhookRateLimit       float64       `validate:"gt=0"`
	WebhookRateBurst       int           `validate:"gt=0"`
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// OutboundConfig implementation
func (c *Config) GetProxyURL() string { return c.ProxyURL }

// SearchConfig implementation
func (c *Config) GetRestSearchURL() string            { return c.RestSearchURL }
func (c *Config) GetRestSearchAPIKey() string         { return c.RestSearchAPIKey }
func (c *Config) GetRestSearchTimeout() time.Duration { return c.RestSearchTimeout }

// LineConfig implementation
func (c *Config) GetLineChannelSecret() string      { return c.LineChannelSecret }
func (c *Config) GetLineChannelAccessToken() string { return c.LineChannelAccessToken }
func (c *Config) GetLineAPIEndpoint() string        { return c.LineAPIEndpoint }

// BotConfig implementation
func (c *Config) GetBotServerURL() string     { return c.BotServerURL }
func (c *Config) GetReplyOnSearchError() bool { return c.ReplyOnSearchError }

// WebhookConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetDedupTTL() time.Duration   { return c.DedupTTL }
func (c *Config) GetWebhookRateLimit() float64 { return c.WebhookRateLimit }
func (c *Config) GetWebhookRateBurst() int     { return c.WebhookRateBurst }
func (c *Config) IsDedupEnabled() bool         { return c.RedisURL != "" }

// Load reads configuration from environment variables.
// A missing or malformed required value is reported as an error naming the
// environment variable so the caller can exit before serving traffic.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               httpAddr(),
		CORSOrigins:            splitCSV(getEnv("CORS_ORIGINS", "")),
		RestSearchURL:          getEnv("RESTSEARCH_URL", defaultRestSearchURL),
		RestSearchAPIKey:       getEnv("GNAVI_API_KEY", ""),
		RestSearchTimeout:      mustDuration(getEnv("RESTSEARCH_TIMEOUT", "0s")),
		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineAPIEndpoint:        getEnv("LINE_API_ENDPOINT", ""),
		BotServerURL:           strings.TrimRight(getEnv("BOT_SERVER_URL", ""), "/"),
		ProxyURL:               getEnv("FIXIE_URL", ""),
		ReplyOnSearchError:     strings.EqualFold(getEnv("REPLY_ON_SEARCH_ERROR", "false"), "true"),
		RedisURL:               getEnv("REDIS_URL", ""),
		DedupTTL:               mustDuration(getEnv("WEBHOOK_DEDUP_TTL", "24h")),
		WebhookRateLimit:       mustFloat(getEnv("WEBHOOK_RATE_LIMIT", "20")),
		WebhookRateBurst:       mustInt(getEnv("WEBHOOK_RATE_BURST", "40")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, describe(err)
	}

	return cfg, nil
}

// describe turns the first validation failure into a message naming the
// environment variable the operator has to set.
func describe(err error) error {
	var fieldErrs govalidator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	name := envName(fe.StructField())
	if fe.Tag() == "required" {
		return fmt.Errorf("specify %s as environment variable", name)
	}
	return fmt.Errorf("%s is invalid (%s)", name, fe.Tag())
}

var envNames = map[string]string{
	"HTTPAddr":               "HTTP_ADDR",
	"RestSearchURL":          "RESTSEARCH_URL",
	"RestSearchAPIKey":       "GNAVI_API_KEY",
	"RestSearchTimeout":      "RESTSEARCH_TIMEOUT",
	"LineChannelSecret":      "LINE_CHANNEL_SECRET",
	"LineChannelAccessToken": "LINE_CHANNEL_ACCESS_TOKEN",
	"LineAPIEndpoint":        "LINE_API_ENDPOINT",
	"BotServerURL":           "BOT_SERVER_URL",
	"ProxyURL":               "FIXIE_URL",
	"DedupTTL":               "WEBHOOK_DEDUP_TTL",
	"WebhookRateLimit":       "WEBHOOK_RATE_LIMIT",
	"WebhookRateBurst":       "WEBHOOK_RATE_BURST",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

func httpAddr() string {
	if addr := getEnv("HTTP_ADDR", ""); addr != "" {
		return addr
	}
	return ":" + getEnv("PORT", "5000")
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
		return -1
	}
	return d
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
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
