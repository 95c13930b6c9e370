package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultRatesURL is the public currency-api mirror used for conversions.
const DefaultRatesURL = "https://cdn.jsdelivr.net/gh/fawazahmed0/currency-api@1/latest"

// Config holds every setting the client reads from the environment.
type Config struct {
	// Remote API
	APIURL string
	WebURL string

	// Presentation
	Locale string

	// Rate service
	RatesURL string

	// Pipeline
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
	CacheSize   int

	// Logging
	LogFile  string
	LogLevel string

	// Token is an explicit credential that takes precedence over stored ones.
	Token string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIURL: getEnv("THRIFTEASE_API_URL", "http://localhost:8000/graphql"),
		WebURL: getEnv("THRIFTEASE_WEB_URL", "http://localhost:5173"),

		Locale: getEnv("THRIFTEASE_LOCALE", localeFromLang(os.Getenv("LANG"))),

		RatesURL: strings.TrimRight(getEnv("THRIFTEASE_RATES_URL", DefaultRatesURL), "/"),

		HTTPTimeout: getEnvDuration("THRIFTEASE_HTTP_TIMEOUT", 30*time.Second),
		CacheTTL:    getEnvDuration("THRIFTEASE_CACHE_TTL", 30*time.Second),
		CacheSize:   getEnvInt("THRIFTEASE_CACHE_SIZE", 256),

		LogFile:  getEnv("THRIFTEASE_LOG_FILE", defaultLogFile()),
		LogLevel: getEnv("THRIFTEASE_LOG_LEVEL", "info"),

		Token: os.Getenv("THRIFTEASE_TOKEN"),
	}
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	for _, v := range []struct{ name, raw string }{
		{"THRIFTEASE_API_URL", c.APIURL},
		{"THRIFTEASE_WEB_URL", c.WebURL},
		{"THRIFTEASE_RATES_URL", c.RatesURL},
	} {
		name, raw := v.name, v.raw
		u, err := url.Parse(raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, raw, err))
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", name, u.Scheme))
		}
		if u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': missing host", name, raw))
		}
	}

	if c.HTTPTimeout <= 0 {
		errors = append(errors, "HTTP timeout must be positive")
	}
	if c.CacheTTL < 0 {
		errors = append(errors, "cache TTL cannot be negative")
	}
	if c.CacheSize < 0 {
		errors = append(errors, "cache size cannot be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// CacheEnabled reports whether query results should be cached.
func (c *Config) CacheEnabled() bool {
	return c.CacheSize > 0 && c.CacheTTL > 0
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// localeFromLang turns "de_DE.UTF-8" into "de_DE". "C" and "POSIX" map to "en".
func localeFromLang(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return "en"
	}
	return lang
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".thriftease", "thriftease.log")
}
