package config

import (
	"os"
	"strconv"
	"time"

	"statbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Storage   StorageConfig
	Guardian  GuardianConfig
	Engine    EngineConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds the run-history store connection
type DatabaseConfig struct {
	Driver string // "sqlite3" or "postgres"
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// StorageConfig holds file system paths for uploaded datasets
type StorageConfig struct {
	UploadDir string
}

// GuardianConfig points at the optional assumption-checking service.
// An empty URL disables it.
type GuardianConfig struct {
	URL     string
	Timeout time.Duration
}

// EngineConfig holds defaults applied when a request leaves a field unset
type EngineConfig struct {
	DefaultAlpha        float64
	NumericThreshold    float64
	MaxCategories       int
	DefaultTestSize     float64
	DefaultLearningRate float64
	DefaultIterations   int
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Storage:   *loadStorageConfig(),
		Guardian:  *loadGuardianConfig(),
		Engine:    *loadEngineConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver: getEnvOrDefault("DB_DRIVER", "sqlite3"),
		URL:    getEnvOrDefault("DATABASE_URL", "statbench.db"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) << 20,
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		UploadDir: getEnvOrDefault("UPLOAD_DIR", "uploads/datasets"),
	}
}

func loadGuardianConfig() *GuardianConfig {
	return &GuardianConfig{
		URL:     getEnvOrDefault("GUARDIAN_URL", ""),
		Timeout: getEnvDurationOrDefault("GUARDIAN_TIMEOUT", 5*time.Second),
	}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		DefaultAlpha:        getEnvFloatOrDefault("DEFAULT_ALPHA", 0.05),
		NumericThreshold:    getEnvFloatOrDefault("NUMERIC_THRESHOLD", 0.8),
		MaxCategories:       getEnvIntOrDefault("MAX_CATEGORIES", 20),
		DefaultTestSize:     getEnvFloatOrDefault("DEFAULT_TEST_SIZE", 0.2),
		DefaultLearningRate: getEnvFloatOrDefault("DEFAULT_LEARNING_RATE", 0.1),
		DefaultIterations:   getEnvIntOrDefault("DEFAULT_ITERATIONS", 1000),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid("DB_DRIVER must be sqlite3 or postgres")
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	e := config.Engine
	if e.DefaultAlpha <= 0 || e.DefaultAlpha >= 1 {
		return errors.ConfigInvalid("DEFAULT_ALPHA must be in (0, 1)")
	}
	if e.NumericThreshold <= 0 || e.NumericThreshold > 1 {
		return errors.ConfigInvalid("NUMERIC_THRESHOLD must be in (0, 1]")
	}
	if e.MaxCategories < 2 {
		return errors.ConfigInvalid("MAX_CATEGORIES must be at least 2")
	}
	if e.DefaultTestSize <= 0 || e.DefaultTestSize >= 1 {
		return errors.ConfigInvalid("DEFAULT_TEST_SIZE must be in (0, 1)")
	}
	if e.DefaultLearningRate <= 0 || e.DefaultIterations <= 0 {
		return errors.ConfigInvalid("learning rate and iterations must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
