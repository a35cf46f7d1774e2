package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Exchange rates. URL templates take {date} and {currency}.
	RatePrimaryDated  string
	RateMirrorDated   string
	RatePrimaryLatest string
	RateMirrorLatest  string
	RateTierTimeout   time.Duration
	RateTodayTTL      time.Duration
	RateCacheSize     int

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tripwallet.db"),

		RatePrimaryDated:  getEnv("RATE_PRIMARY_DATED_URL", "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@{date}/v1/currencies/{currency}.json"),
		RateMirrorDated:   getEnv("RATE_MIRROR_DATED_URL", "https://{date}.currency-api.pages.dev/v1/currencies/{currency}.json"),
		RatePrimaryLatest: getEnv("RATE_PRIMARY_LATEST_URL", "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/{currency}.json"),
		RateMirrorLatest:  getEnv("RATE_MIRROR_LATEST_URL", "https://latest.currency-api.pages.dev/v1/currencies/{currency}.json"),
		RateTierTimeout:   getEnvDuration("RATE_TIER_TIMEOUT", 5*time.Second),
		RateTodayTTL:      getEnvDuration("RATE_TODAY_TTL", 10*time.Minute),
		RateCacheSize:     getEnvInt("RATE_CACHE_SIZE", 1024),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration, collecting every problem into one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}

	for name, template := range map[string]string{
		"RATE_PRIMARY_DATED_URL":  c.RatePrimaryDated,
		"RATE_MIRROR_DATED_URL":   c.RateMirrorDated,
		"RATE_PRIMARY_LATEST_URL": c.RatePrimaryLatest,
		"RATE_MIRROR_LATEST_URL":  c.RateMirrorLatest,
	} {
		if template == "" {
			errs = append(errs, name+" cannot be empty")
			continue
		}
		if !strings.Contains(template, "{currency}") {
			errs = append(errs, name+" must contain a {currency} placeholder")
		}
		probe := strings.NewReplacer("{date}", "2024-01-01", "{currency}", "usd").Replace(template)
		if u, err := url.Parse(probe); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("%s is not a valid http(s) URL: %q", name, template))
		}
	}

	if c.RateTierTimeout < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("rate tier timeout %v too small: minimum 100ms", c.RateTierTimeout))
	}
	if c.RateTodayTTL < time.Second {
		errs = append(errs, fmt.Sprintf("rate today TTL %v too small: minimum 1s", c.RateTodayTTL))
	}
	if c.RateCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("rate cache size %d: must be at least 1", c.RateCacheSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
