// Package config loads the portal's runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is everything the portal needs to run. Only APIBaseURL has no
// usable default.
type Config struct {
	APIBaseURL    string        // Required: base URL of the learning-platform API
	Port          int           // HTTP port (default: 8080)
	CookiePrefix  string        // Session cookie name prefix (default: portal)
	SecureCookies bool          // Mark session cookies Secure (default: false)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	LoginRatePerMinute  int           // Login attempts allowed per minute per address (default: 10)
	ReferenceRefresh    time.Duration // Reference-data poll interval (default: 10m)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// FromEnv reads the configuration, applying defaults for anything unset.
func FromEnv() Config {
	return Config{
		APIBaseURL:    os.Getenv("PORTAL_API_BASE_URL"),
		Port:          getEnvIntOrDefault("PORTAL_PORT", 8080),
		CookiePrefix:  getEnvOrDefault("PORTAL_COOKIE_PREFIX", "portal"),
		SecureCookies: getEnvBoolOrDefault("PORTAL_SECURE_COOKIES", false),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		LoginRatePerMinute:  getEnvIntOrDefault("PORTAL_LOGIN_RATE_PER_MINUTE", 10),
		ReferenceRefresh:    getEnvDurationOrDefault("PORTAL_REFERENCE_REFRESH", 10*time.Minute),
		ShutdownGracePeriod: getEnvDurationOrDefault("PORTAL_SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports configuration that cannot work at all.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("PORTAL_API_BASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORTAL_PORT %d is out of range", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
