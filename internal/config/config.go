package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Content  ContentConfig
	Session  SessionConfig
	Server   ServerConfig
	Tenancy  TenancyConfig
	Limiter  LimiterConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Shipping ShippingConfig
	Log      LogConfig
}

// ContentConfig holds the content API connection settings.
type ContentConfig struct {
	BaseURL           string
	Token             string //nolint:gosec // G117: content API credential config
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// SessionConfig holds admin session settings.
type SessionConfig struct {
	Secret       string //nolint:gosec // G117: JWT signing secret config
	TTL          time.Duration
	CookieDomain string
	Secure       bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	CORSOrigins       []string
	RequestsPerMinute int
}

// TenancyConfig holds store addressing settings.
type TenancyConfig struct {
	BaseDomain string
	RootHosts  []string
}

// LimiterConfig holds per-action rate limit settings.
type LimiterConfig struct {
	Window time.Duration
	Max    int
}

// RedisConfig holds optional shared rate limiter backend settings.
// When Addr is empty the in-memory limiter is used.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// SMTPConfig holds outgoing mail settings. When Host is empty,
// password reset links are logged instead of mailed.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string //nolint:gosec // G117: SMTP credential config
	From     string
}

// ShippingConfig holds carrier quote API settings.
type ShippingConfig struct {
	BaseURL        string
	Token          string //nolint:gosec // G117: carrier API credential config
	OriginPostcode string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (session secret, content token) must be set explicitly.
func Load() (*Config, error) {
	contentTimeout, err := getEnvDuration("LEANTTRO_CONTENT_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	contentRPS, err := getEnvFloat("LEANTTRO_CONTENT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	contentBurst, err := getEnvInt("LEANTTRO_CONTENT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionTTL, err := getEnvDuration("LEANTTRO_SESSION_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionSecure, err := getEnvBool("LEANTTRO_SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("LEANTTRO_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("LEANTTRO_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	serverRPM, err := getEnvInt("LEANTTRO_SERVER_RPM", 300)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	limitWindow, err := getEnvDuration("LEANTTRO_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	limitMax, err := getEnvInt("LEANTTRO_LIMIT_MAX", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("LEANTTRO_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	smtpPort, err := getEnvInt("LEANTTRO_SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("LEANTTRO_CORS_ORIGINS", []string{"http://localhost:5173"})
	rootHosts := getEnvList("LEANTTRO_ROOT_HOSTS", nil)

	cfg := &Config{
		Content: ContentConfig{
			BaseURL:           getEnv("LEANTTRO_CONTENT_URL", "http://localhost:8055"),
			Token:             getEnv("LEANTTRO_CONTENT_TOKEN", ""),
			Timeout:           contentTimeout,
			RequestsPerSecond: contentRPS,
			Burst:             contentBurst,
		},
		Session: SessionConfig{
			Secret:       getEnv("LEANTTRO_SESSION_SECRET", ""),
			TTL:          sessionTTL,
			CookieDomain: getEnv("LEANTTRO_SESSION_COOKIE_DOMAIN", ""),
			Secure:       sessionSecure,
		},
		Server: ServerConfig{
			Addr:              getEnv("LEANTTRO_SERVER_ADDR", ":8080"),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			CORSOrigins:       corsOrigins,
			RequestsPerMinute: serverRPM,
		},
		Tenancy: TenancyConfig{
			BaseDomain: getEnv("LEANTTRO_BASE_DOMAIN", "localhost"),
			RootHosts:  rootHosts,
		},
		Limiter: LimiterConfig{
			Window: limitWindow,
			Max:    limitMax,
		},
		Redis: RedisConfig{
			Addr:     getEnv("LEANTTRO_REDIS_ADDR", ""),
			Password: getEnv("LEANTTRO_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("LEANTTRO_SMTP_HOST", ""),
			Port:     smtpPort,
			Username: getEnv("LEANTTRO_SMTP_USER", ""),
			Password: getEnv("LEANTTRO_SMTP_PASSWORD", ""),
			From:     getEnv("LEANTTRO_SMTP_FROM", ""),
		},
		Shipping: ShippingConfig{
			BaseURL:        getEnv("LEANTTRO_SHIPPING_URL", "https://www.cepcerto.com/ws"),
			Token:          getEnv("LEANTTRO_SHIPPING_TOKEN", ""),
			OriginPostcode: getEnv("LEANTTRO_SHIPPING_ORIGIN", "01026000"),
		},
		Log: LogConfig{
			Level:  getEnv("LEANTTRO_LOG_LEVEL", "info"),
			Format: getEnv("LEANTTRO_LOG_FORMAT", "console"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// Session secret is required (no insecure default).
	if c.Session.Secret == "" {
		return errors.New("LEANTTRO_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("LEANTTRO_SESSION_SECRET must be at least 32 characters")
	}

	if c.Content.Token == "" {
		log.Warn().Msg("LEANTTRO_CONTENT_TOKEN is empty; content API requests will be unauthenticated")
	}

	// Bounds checks.
	if c.Content.RequestsPerSecond <= 0 {
		return fmt.Errorf("LEANTTRO_CONTENT_RPS must be positive, got %g", c.Content.RequestsPerSecond)
	}
	if c.Content.Burst < 1 {
		return fmt.Errorf("LEANTTRO_CONTENT_BURST must be >= 1, got %d", c.Content.Burst)
	}
	if c.Content.Timeout <= 0 {
		return fmt.Errorf("LEANTTRO_CONTENT_TIMEOUT must be positive, got %s", c.Content.Timeout)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("LEANTTRO_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("LEANTTRO_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("LEANTTRO_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RequestsPerMinute < 1 {
		return fmt.Errorf("LEANTTRO_SERVER_RPM must be >= 1, got %d", c.Server.RequestsPerMinute)
	}
	if c.Limiter.Window <= 0 {
		return fmt.Errorf("LEANTTRO_LIMIT_WINDOW must be positive, got %s", c.Limiter.Window)
	}
	if c.Limiter.Max < 1 {
		return fmt.Errorf("LEANTTRO_LIMIT_MAX must be >= 1, got %d", c.Limiter.Max)
	}
	if c.Tenancy.BaseDomain == "" {
		return errors.New("LEANTTRO_BASE_DOMAIN must not be empty")
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("LEANTTRO_SMTP_PORT must be 1-65535, got %d", c.SMTP.Port)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
