package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Export backends
const (
	ExportMemory = "memory"
	ExportSheets = "sheets"
)

type Config struct {
	// Remote API
	APIBaseURL string
	APITimeout time.Duration

	// Notifications
	NotificationDuration time.Duration

	// Insights cache
	InsightsCacheTTL  time.Duration
	InsightsCacheSize int

	// Dashboard
	SampleConcurrency int

	// AMQP change events (disabled when AMQPURL is empty)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Export
	ExportBackend string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Charts
	ChartDir string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeout: getEnvDuration("API_TIMEOUT", 0),

		NotificationDuration: getEnvDuration("NOTIFICATION_DURATION", 5*time.Second),

		InsightsCacheTTL:  getEnvDuration("INSIGHTS_CACHE_TTL", 10*time.Minute),
		InsightsCacheSize: getEnvInt("INSIGHTS_CACHE_SIZE", 16),

		SampleConcurrency: getEnvInt("SAMPLE_CONCURRENCY", 2),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "expenses.changed"),

		ExportBackend: getEnv("EXPORT_BACKEND", ExportMemory),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		ChartDir: getEnv("CHART_DIR", "./charts"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API base URL
	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.APITimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must not be negative", c.APITimeout))
	}

	if c.NotificationDuration < 0 {
		errors = append(errors, fmt.Sprintf("invalid notification duration %v: must not be negative", c.NotificationDuration))
	}

	// Validate insights cache
	if c.InsightsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid insights cache size %d: must be at least 1", c.InsightsCacheSize))
	} else if c.InsightsCacheSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid insights cache size %d: must be at most 1000", c.InsightsCacheSize))
	}
	if c.InsightsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid insights cache TTL %v: must not be negative", c.InsightsCacheTTL))
	}

	if c.SampleConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid sample concurrency %d: must be at least 1", c.SampleConcurrency))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	// Validate export backend
	switch c.ExportBackend {
	case ExportMemory:
	case ExportSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets export")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets export")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid export backend '%s': must be one of [%s %s]", c.ExportBackend, ExportMemory, ExportSheets))
	}

	if c.ChartDir == "" {
		errors = append(errors, "chart directory cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether change events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
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
