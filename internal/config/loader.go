package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the console.
type Config struct {
	APIBaseURL string
	SQLiteDSN  string
	// HTTPTimeout bounds each outbound request. Zero means no client-side
	// timeout, which is the default.
	HTTPTimeout time.Duration
	// APIRate caps outbound requests per second. Zero disables the limiter.
	APIRate float64
	// MetricsAddr enables the Prometheus listener when non-empty.
	MetricsAddr string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and accumulating every problem into a single error.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:   "file:console.db?_pragma=busy_timeout(5000)",
		HTTPTimeout: 0,
		APIRate:     0,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if base := strings.TrimSpace(os.Getenv("CONSOLE_API_BASE_URL")); base == "" {
		missing = append(missing, "CONSOLE_API_BASE_URL")
	} else {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			invalid = append(invalid, "CONSOLE_API_BASE_URL")
		} else {
			cfg.APIBaseURL = strings.TrimRight(base, "/")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONSOLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CONSOLE_HTTP_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CONSOLE_HTTP_TIMEOUT")
		} else {
			cfg.HTTPTimeout = timeout
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("CONSOLE_API_RATE")); rateValue != "" {
		rate, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || rate < 0 {
			invalid = append(invalid, "CONSOLE_API_RATE")
		} else {
			cfg.APIRate = rate
		}
	}

	if addr := strings.TrimSpace(os.Getenv("CONSOLE_METRICS_ADDR")); addr != "" {
		cfg.MetricsAddr = addr
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables hold invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
