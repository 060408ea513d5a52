package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Environment string
	// Model artifacts
	ManifestPath string
	ScalerPath   string
	ModelPath    string
	// Security configuration
	AllowedOrigins     string
	EnableRateLimit    bool
	RateLimitPerMinute int
	MaxRequestSize     int64
	ExposeErrorDetails bool
	// Logging
	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
}

// New creates a new configuration instance from environment variables
func New() *Config {
	env := getEnv("ENV", "development")
	defaultFormat := "console"
	if env == "production" {
		defaultFormat = "json"
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		ManifestPath: getEnv("MODEL_MANIFEST", ""),
		ScalerPath:   getEnv("SCALER_PATH", "scaler.json"),
		ModelPath:    getEnv("MODEL_PATH", "xgb_model.json"),
		// Security configuration
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", ""),
		EnableRateLimit:    getEnv("ENABLE_RATE_LIMIT", "false") == "true",
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		MaxRequestSize:     getEnvAsInt64("MAX_REQUEST_SIZE", 1024*1024), // 1MB default
		ExposeErrorDetails: getEnv("EXPOSE_ERROR_DETAILS", "true") == "true",
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", defaultFormat),
		ShutdownTimeout:    time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasManifest returns true if artifact locations come from a model manifest
func (c *Config) HasManifest() bool {
	return c.ManifestPath != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{}
	}
	origins := strings.Split(c.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
