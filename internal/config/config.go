package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Extraction ExtractionConfig
	Browser    BrowserConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	API        APIConfig
	Logging    LoggingConfig
}

type ExtractionConfig struct {
	CategoryURLs     []string
	Workers          int
	ActionDelay      time.Duration
	PresenceTimeout  time.Duration
	StalenessTimeout time.Duration
	SetupTimeout     time.Duration
	MaxRetries       int
	Currency         string
	ColorTags        []string
	ShadeTags        []string
	SizeTags         []string
	OptionTags       []string
	WithDuplicates   string
	Deduplicated     string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled bool
	Addr    string
	Stream  string
}

type APIConfig struct {
	Enabled         bool
	Addr            string
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Extraction: ExtractionConfig{
			CategoryURLs:     getStringSliceOrDefault("CATEGORY_URLS", defaultCategoryURLs()),
			Workers:          getIntOrDefault("EXTRACTION_WORKERS", 10),
			ActionDelay:      getDurationOrDefault("EXTRACTION_ACTION_DELAY", time.Second),
			PresenceTimeout:  getDurationOrDefault("EXTRACTION_PRESENCE_TIMEOUT", 2*time.Second),
			StalenessTimeout: getDurationOrDefault("EXTRACTION_STALENESS_TIMEOUT", 10*time.Second),
			SetupTimeout:     getDurationOrDefault("EXTRACTION_SETUP_TIMEOUT", 10*time.Second),
			MaxRetries:       getIntOrDefault("EXTRACTION_MAX_RETRIES", 5),
			Currency:         getEnvOrDefault("EXTRACTION_CURRENCY", "€ (EUR)"),
			ColorTags:        getStringSliceOrDefault("VARIATION_COLOR_TAGS", []string{"colour:", "color:"}),
			ShadeTags:        getStringSliceOrDefault("VARIATION_SHADE_TAGS", []string{"shade:"}),
			SizeTags:         getStringSliceOrDefault("VARIATION_SIZE_TAGS", []string{"size:"}),
			OptionTags:       getStringSliceOrDefault("VARIATION_OPTION_TAGS", []string{"option:"}),
			WithDuplicates:   getEnvOrDefault("OUTPUT_WITH_DUPLICATES", "test_cult_beauty_with_duplicates.csv"),
			Deduplicated:     getEnvOrDefault("OUTPUT_DEDUPLICATED", "test_cult_beauty_without_duplicates.csv"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-GB,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Europe/London"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-GB"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "cult_beauty"),
		},
		Redis: RedisConfig{
			Enabled: getBoolOrDefault("REDIS_ENABLED", false),
			Addr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Stream:  getEnvOrDefault("REDIS_STREAM", "extraction-events"),
		},
		API: APIConfig{
			Enabled:         getBoolOrDefault("API_ENABLED", false),
			Addr:            getEnvOrDefault("API_ADDR", "0.0.0.0:8080"),
			ShutdownTimeout: getDurationOrDefault("API_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Extraction.CategoryURLs) == 0 {
		return fmt.Errorf("CATEGORY_URLS must name at least one category")
	}

	if c.Extraction.Workers < 1 {
		return fmt.Errorf("EXTRACTION_WORKERS must be at least 1")
	}

	if c.Extraction.MaxRetries < 1 {
		return fmt.Errorf("EXTRACTION_MAX_RETRIES must be at least 1")
	}

	if c.Database.Enabled && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_ENABLED is set")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func defaultCategoryURLs() []string {
	return []string{
		"https://www.cultbeauty.com/skin-care.list",
		"https://www.cultbeauty.com/make-up.list",
		"https://www.cultbeauty.com/hair-care.list",
		"https://www.cultbeauty.com/body-wellbeing.list",
		"https://www.cultbeauty.com/fragrance.list",
		"https://www.cultbeauty.com/body-wellbeing/tanning-suncare/shop-all.list",
		"https://www.cultbeauty.com/men.list",
		"https://www.cultbeauty.com/gifts.list",
		"https://www.cultbeauty.com/minis.list",
		"https://www.cultbeauty.com/sale.list",
	}
}
