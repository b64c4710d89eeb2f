package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rawda/internal/corpus"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	APIPort   string

	ContentDir       string // filesystem root of the published JSON tree
	ContentBaseURL   string // when set, content is fetched over HTTP instead
	FetchTimeout     time.Duration
	ArticlesManifest string
	ArticlesDir      string
	BooksManifest    string
	BooksDir         string
	CacheTTL         time.Duration // 0 disables the document cache
	WatchContent     bool

	DBPath string

	PageSize         int
	SearchDebounce   time.Duration
	SearchTimeout    time.Duration
	FetchConcurrency int
	SearchRateLimit  float64 // requests per second per client

	VerseWidth    float64
	VerseFontPath string
	VerseFontSize float64
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up to find the project root's .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	defaults := corpus.DefaultCollections()
	cfg := &Config{
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
		APIPort:          getEnv("API_PORT", "9000"),
		ContentDir:       getEnv("CONTENT_DIR", "./public/Json"),
		ContentBaseURL:   strings.TrimSpace(getEnv("CONTENT_BASE_URL", "")),
		ArticlesManifest: getEnv("ARTICLES_MANIFEST", defaults[0].ManifestPath),
		ArticlesDir:      getEnv("ARTICLES_DIR", defaults[0].Dir),
		BooksManifest:    getEnv("BOOKS_MANIFEST", defaults[1].ManifestPath),
		BooksDir:         getEnv("BOOKS_DIR", defaults[1].Dir),
		DBPath:           getEnv("DB_PATH", "./data/rawda.db"),
		VerseFontPath:    getEnv("VERSE_FONT_PATH", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.PageSize, err = getInt("PAGE_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = getInt("FETCH_CONCURRENCY", 16); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getDuration("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SearchTimeout, err = getDuration("SEARCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.VerseWidth, err = getFloat("VERSE_WIDTH", 360); err != nil {
		return nil, err
	}
	if cfg.VerseFontSize, err = getFloat("VERSE_FONT_SIZE", 18); err != nil {
		return nil, err
	}
	if cfg.SearchRateLimit, err = getFloat("SEARCH_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.WatchContent, err = getBool("WATCH_CONTENT", true); err != nil {
		return nil, err
	}

	// Validate ranges
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be greater than 0")
	}
	if cfg.FetchConcurrency <= 0 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be greater than 0")
	}
	if cfg.SearchDebounce < 0 || cfg.SearchTimeout <= 0 || cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("SEARCH_DEBOUNCE must not be negative; SEARCH_TIMEOUT and FETCH_TIMEOUT must be positive")
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative")
	}
	if cfg.VerseWidth <= 0 || cfg.VerseFontSize <= 0 {
		return nil, fmt.Errorf("VERSE_WIDTH and VERSE_FONT_SIZE must be greater than 0")
	}
	if cfg.SearchRateLimit < 0 {
		return nil, fmt.Errorf("SEARCH_RATE_LIMIT must not be negative")
	}
	if cfg.ContentBaseURL == "" && cfg.ContentDir == "" {
		return nil, fmt.Errorf("CONTENT_DIR or CONTENT_BASE_URL is required")
	}

	// Create ./data directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// RemoteContent reports whether documents are fetched over HTTP.
func (c *Config) RemoteContent() bool {
	return c.ContentBaseURL != ""
}

// Collections returns the configured collections in lookup order.
func (c *Config) Collections() []corpus.Collection {
	return []corpus.Collection{
		{Name: corpus.CollectionArticles, ManifestPath: c.ArticlesManifest, Dir: c.ArticlesDir},
		{Name: corpus.CollectionBooks, ManifestPath: c.BooksManifest, Dir: c.BooksDir},
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

// getDuration accepts Go durations ("300ms") or a bare number of milliseconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
