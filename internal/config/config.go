package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars. It is built once in main and
// handed to every component constructor.
type Config struct {
	Port        string
	Env         string
	BaseURL     string
	DatabaseURL string
	SecretKey   string
	CORSOrigins []string

	SessionLifetime      time.Duration
	SessionPurgeSchedule string
	TokenEncryptionKey   string

	Google   OAuthClient
	LinkedIn OAuthClient

	AI      AIConfig
	Monitor MonitorConfig

	UploadFolder string
	LogLevel     string
	LogDev       bool
}

// OAuthClient is the credential set of a single OAuth provider.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Configured reports whether both client credentials are present.
func (c OAuthClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AIConfig points at the text-generation provider.
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// MonitorConfig points at the feed/job discovery provider.
type MonitorConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	baseURL := strings.TrimRight(fallback(os.Getenv("BASE_URL"), "http://localhost:8080"), "/")
	cfg := Config{
		Port:                 fallback(os.Getenv("PORT"), "8080"),
		Env:                  fallback(os.Getenv("APP_ENV"), "development"),
		BaseURL:              baseURL,
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SecretKey:            strings.TrimSpace(os.Getenv("SECRET_KEY")),
		CORSOrigins:          parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), baseURL)),
		SessionPurgeSchedule: strings.TrimSpace(os.Getenv("SESSION_PURGE_SCHEDULE")),
		TokenEncryptionKey:   strings.TrimSpace(os.Getenv("TOKEN_ENCRYPTION_KEY")),
		Google: OAuthClient{
			ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
			RedirectURL:  fallback(os.Getenv("GOOGLE_REDIRECT_URI"), baseURL+"/api/auth/google/callback"),
		},
		LinkedIn: OAuthClient{
			ClientID:     strings.TrimSpace(os.Getenv("LINKEDIN_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("LINKEDIN_CLIENT_SECRET")),
			RedirectURL:  fallback(os.Getenv("LINKEDIN_REDIRECT_URI"), baseURL+"/api/linkedin/callback"),
		},
		AI: AIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("CUSTOM_AI_BASE_URL")), "/"),
			APIKey:  strings.TrimSpace(os.Getenv("CUSTOM_AI_API_KEY")),
			Model:   fallback(os.Getenv("CUSTOM_AI_MODEL"), "default"),
			Timeout: seconds(os.Getenv("AI_TIMEOUT_SECONDS"), 30),
		},
		Monitor: MonitorConfig{
			URL:     strings.TrimRight(strings.TrimSpace(os.Getenv("PARALLEL_MONITOR_URL")), "/"),
			APIKey:  strings.TrimSpace(os.Getenv("PARALLEL_MONITOR_API_KEY")),
			Timeout: seconds(os.Getenv("MONITOR_TIMEOUT_SECONDS"), 60),
		},
		UploadFolder: fallback(os.Getenv("UPLOAD_FOLDER"), "uploads"),
		LogLevel:     fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogDev:       os.Getenv("LOG_DEV") == "1",
	}

	days := fallback(os.Getenv("SESSION_LIFETIME_DAYS"), "7")
	if n, err := strconv.Atoi(days); err == nil && n > 0 {
		cfg.SessionLifetime = time.Duration(n) * 24 * time.Hour
	} else {
		cfg.SessionLifetime = 7 * 24 * time.Hour
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Production reports whether the service runs with production cookie policy.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func seconds(value string, def int) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return time.Duration(def) * time.Second
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
