package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetbuddy/internal/core"
)

// Storage backends selectable through DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Backends lists the valid DATA_BACKEND values.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite, BackendSheets, BackendPostgres}
}

type Config struct {
	// HTTP Server
	Port string
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string
	PostgresDSN  string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Classifier
	ClassifierRuleSet   string
	ClassifierRulesFile string

	// Alerts
	CurrencySymbol string
	OverspendLimit string
	OverspendWarn  string
	AlertTTL       time.Duration
	WeeklyInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", BackendFile),
		DataDir:     getEnv("DATA_DIR", "./data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgetbuddy.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "BudgetBuddy"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetbuddy"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "alerts"),

		ClassifierRuleSet:   getEnv("CLASSIFIER_RULESET", "default"),
		ClassifierRulesFile: getEnv("CLASSIFIER_RULES_FILE", ""),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		OverspendLimit: getEnv("OVERSPEND_LIMIT", "1000"),
		OverspendWarn:  getEnv("OVERSPEND_WARN", "500"),
		AlertTTL:       getEnvDuration("ALERT_TTL", 5*time.Second),
		WeeklyInterval: getEnvDuration("WEEKLY_INTERVAL", 168*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

// Thresholds returns the flat overspend limits in cents. Call after Validate.
func (c *Config) Thresholds() (over, nearing core.Money) {
	over, _ = core.ParseAmount(c.OverspendLimit)
	nearing, _ = core.ParseAmount(c.OverspendWarn)
	return over, nearing
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR like 203.0.113.0/24", cidr))
		}
	}

	// Validate data backend
	if !slices.Contains(Backends(), c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends()))
	}

	switch c.DataBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate classifier
	if c.ClassifierRulesFile != "" {
		if _, err := os.Stat(c.ClassifierRulesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("classifier rules file does not exist: %s", c.ClassifierRulesFile))
		}
	} else if c.ClassifierRuleSet != "default" && c.ClassifierRuleSet != "legacy" {
		errors = append(errors, fmt.Sprintf("invalid classifier rule set '%s': must be 'default' or 'legacy'", c.ClassifierRuleSet))
	}

	// Validate alert thresholds
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}
	over, errOver := core.ParseAmount(c.OverspendLimit)
	if errOver != nil {
		errors = append(errors, fmt.Sprintf("invalid overspend limit '%s': must be a non-negative number", c.OverspendLimit))
	}
	nearing, errWarn := core.ParseAmount(c.OverspendWarn)
	if errWarn != nil {
		errors = append(errors, fmt.Sprintf("invalid overspend warning '%s': must be a non-negative number", c.OverspendWarn))
	}
	if errOver == nil && errWarn == nil && nearing.Cents > over.Cents {
		errors = append(errors, fmt.Sprintf("overspend warning %s must not exceed overspend limit %s", nearing, over))
	}

	if c.AlertTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid alert TTL %v: must be at least 1 second", c.AlertTTL))
	}
	if c.WeeklyInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid weekly interval %v: must not be negative", c.WeeklyInterval))
	}

	// Validate logging
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
