// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL prefixed to the file references
	// returned by the upload endpoint.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// CORSOrigins is the list of origins allowed to call the API.
	CORSOrigins []string

	// Upload holds file storage settings.
	Upload UploadConfig

	// Image holds image normalization settings.
	Image ImageConfig
}

// UploadConfig holds file storage settings.
type UploadConfig struct {
	// Root is the directory all project files are stored under. Created
	// at startup if absent.
	Root string

	// MaxSize is the maximum accepted upload size in bytes.
	MaxSize int64
}

// ImageConfig holds the knobs for the upload normalization pipeline.
type ImageConfig struct {
	// Quality is the target encode quality for JPEG and WebP output (1-100).
	Quality int

	// MaxWidth is the maximum stored image width in pixels. Wider images
	// are downscaled proportionally; smaller images are never enlarged.
	MaxWidth int

	// ConvertToWebP enables re-encoding PNG/JPEG sources to WebP.
	ConvertToWebP bool
}

// Load reads configuration from a .env file (if present) and environment
// variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	// Best effort: a missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		Upload: UploadConfig{
			Root:    getEnv("UPLOAD_ROOT", "./uploads"),
			MaxSize: getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
		},

		Image: ImageConfig{
			Quality:       getEnvInt("IMAGE_QUALITY", 85),
			MaxWidth:      getEnvInt("MAX_IMAGE_WIDTH", 1920),
			ConvertToWebP: getEnv("CONVERT_TO_WEBP", "false") == "true",
		},
	}

	if cfg.Image.Quality < 1 || cfg.Image.Quality > 100 {
		return nil, fmt.Errorf("IMAGE_QUALITY must be between 1 and 100, got %d", cfg.Image.Quality)
	}
	if cfg.Image.MaxWidth < 1 {
		return nil, fmt.Errorf("MAX_IMAGE_WIDTH must be positive, got %d", cfg.Image.MaxWidth)
	}
	if cfg.Upload.MaxSize < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", cfg.Upload.MaxSize)
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	if cfg.IsProduction() && getEnv("BASE_URL", "") == "" {
		return nil, fmt.Errorf("BASE_URL is required in production")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvInt64 reads an int64 env var or returns the default.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
