package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	WorldBank   WorldBankConfig `toml:"worldbank"`
	News        NewsConfig      `toml:"news"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port          int    `toml:"port"`
	Host          string `toml:"host"`
	AdminPassword string `toml:"admin_password"` // Empty disables basic auth (local dev)
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path          string `toml:"path"`            // Database file path
	CacheSizeMB   int    `toml:"cache_size_mb"`   // Page cache size in MB
	BusyTimeoutMS int    `toml:"busy_timeout_ms"` // Lock wait timeout in milliseconds
	WALMode       bool   `toml:"wal_mode"`        // Enable write-ahead logging
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// WorldBankConfig contains the macro-indicator provider settings
type WorldBankConfig struct {
	BaseURL        string        `toml:"base_url"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      int           `toml:"rate_limit"` // Requests per second
}

// NewsConfig contains the news provider settings. An empty APIKey is a
// valid disabled state, not a misconfiguration.
type NewsConfig struct {
	BaseURL        string        `toml:"base_url"`
	APIKey         string        `toml:"api_key"`
	PageSize       int           `toml:"page_size"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	StalenessDays  int           `toml:"staleness_days"`
}

// ClaudeConfig contains Anthropic Claude API configuration for the
// judgment provider
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (ANTHROPIC_API_KEY also honoured)
	Model       string  `toml:"model"`       // Model for judgment calls
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// GeminiConfig contains Google Gemini API configuration for the optional
// web-augmented research brief
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// SchedulerConfig contains the batch job cadences and throttles. Delays are
// a minimum-spacing guarantee against third-party rate limits.
type SchedulerConfig struct {
	Enabled        bool          `toml:"enabled"`
	NewsSchedule   string        `toml:"news_schedule"`   // Cron expression, daily news refresh
	SyncSchedule   string        `toml:"sync_schedule"`   // Cron expression, weekly fundamentals sync
	RerateSchedule string        `toml:"rerate_schedule"` // Cron expression, weekly re-rate
	NewsDelay      time.Duration `toml:"news_delay"`      // Minimum spacing between countries, news job
	SyncDelay      time.Duration `toml:"sync_delay"`      // Minimum spacing between countries, sync job
	RerateDelay    time.Duration `toml:"rerate_delay"`    // Minimum spacing between countries, re-rate job
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3002,
			Host: "localhost",
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/ratings.db",
				CacheSizeMB:   64,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		WorldBank: WorldBankConfig{
			BaseURL:        "https://api.worldbank.org/v2",
			RequestTimeout: 30 * time.Second,
			RateLimit:      5,
		},
		News: NewsConfig{
			BaseURL:        "https://newsapi.org/v2",
			APIKey:         "",
			PageSize:       10,
			RequestTimeout: 20 * time.Second,
			StalenessDays:  7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.2,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			NewsSchedule:   "0 6 * * *", // Daily 06:00
			SyncSchedule:   "0 4 * * 1", // Monday 04:00
			RerateSchedule: "0 3 * * 0", // Sunday 03:00
			NewsDelay:      1200 * time.Millisecond,
			SyncDelay:      2 * time.Second,
			RerateDelay:    3 * time.Second,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SOVRAN_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SOVRAN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SOVRAN_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if password := os.Getenv("SOVRAN_ADMIN_PASSWORD"); password != "" {
		config.Server.AdminPassword = password
	}

	if path := os.Getenv("SOVRAN_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}

	if level := os.Getenv("SOVRAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		config.News.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}

	if enabled := os.Getenv("SOVRAN_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
