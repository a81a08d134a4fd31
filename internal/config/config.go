package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Booking  BookingConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
}

// SessionConfig holds session cookie and storage configuration.
type SessionConfig struct {
	Backend      string
	TTL          time.Duration
	CookieName   string
	SecureCookie bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PaymentConfig holds payment simulator configuration.
type PaymentConfig struct {
	Delay       time.Duration
	SuccessRate float64
}

// BookingConfig holds network and ticket configuration.
type BookingConfig struct {
	NetworkFile     string // Empty means the built-in network
	TicketCacheSize int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load reads an optional .env file and then loads configuration from
// environment variables. Variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv loads configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "8080"),
			ReadTimeout:        getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),
		},
		Session: SessionConfig{
			Backend:      getEnv("SESSION_BACKEND", SessionBackendMemory),
			TTL:          getDurationEnv("SESSION_TTL", 2*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE", "metro_session"),
			SecureCookie: getBoolEnv("SESSION_SECURE_COOKIE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Payment: PaymentConfig{
			Delay:       getDurationEnv("PAYMENT_DELAY", 2*time.Second),
			SuccessRate: getFloatEnv("PAYMENT_SUCCESS_RATE", 0.85),
		},
		Booking: BookingConfig{
			NetworkFile:     getEnv("NETWORK_FILE", ""),
			TicketCacheSize: getIntEnv("TICKET_CACHE_SIZE", 256),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "metro-ticketing"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Payment.SuccessRate <= 0 || c.Payment.SuccessRate > 1 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be in (0, 1], got %v", c.Payment.SuccessRate)
	}
	if c.Payment.Delay < 0 {
		return fmt.Errorf("PAYMENT_DELAY must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
