package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"geoverify/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Store      StoreConfig
	Critic     CriticConfig
	Server     ServerConfig
	Validation ValidationConfig
	Log        LogConfig
}

// StoreConfig selects the critique session backend
type StoreConfig struct {
	Driver      string // memory, file, postgres, sqlite
	DatabaseURL string
	Path        string
}

// CriticConfig holds settings for the external LLM critic
type CriticConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Enabled reports whether an API key was configured
func (c CriticConfig) Enabled() bool {
	return c.APIKey != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ValidationConfig holds engine tunables
type ValidationConfig struct {
	SNRMethod          string
	SampleRate         float64
	MaxIterations      int
	BatchConcurrency   int
	RangeTablesFile    string
	HistoryLimit       int
	SessionListDefault int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from a .env file (if present) and environment variables and validates it
func Load() (*Config, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	config := &Config{
		Store:      loadStoreConfig(),
		Critic:     loadCriticConfig(),
		Server:     loadServerConfig(),
		Validation: loadValidationConfig(),
		Log:        LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns a configuration suitable for tests and embedded use
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: "memory"},
		Critic: CriticConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   2000,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Server: ServerConfig{Port: "8080", GinMode: "release"},
		Validation: ValidationConfig{
			SNRMethod:          "hansen",
			SampleRate:         1.0,
			MaxIterations:      5,
			BatchConcurrency:   4,
			HistoryLimit:       10000,
			SessionListDefault: 50,
		},
		Log: LogConfig{Level: "INFO"},
	}
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:      strings.ToLower(getEnvOrDefault("STORE_DRIVER", "memory")),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		Path:        getEnvOrDefault("STORE_PATH", "./data/sessions"),
	}
}

func loadCriticConfig() CriticConfig {
	return CriticConfig{
		APIKey:      os.Getenv("CRITIC_API_KEY"),
		BaseURL:     getEnvOrDefault("CRITIC_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("CRITIC_MODEL", "gpt-4o-mini"),
		MaxTokens:   getEnvIntOrDefault("CRITIC_MAX_TOKENS", 2000),
		Temperature: getEnvFloatOrDefault("CRITIC_TEMPERATURE", 0.2),
		Timeout:     getEnvDurationOrDefault("CRITIC_TIMEOUT", 60*time.Second),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadValidationConfig() ValidationConfig {
	return ValidationConfig{
		SNRMethod:          strings.ToLower(getEnvOrDefault("SNR_METHOD", "hansen")),
		SampleRate:         getEnvFloatOrDefault("SNR_SAMPLE_RATE", 1.0),
		MaxIterations:      getEnvIntOrDefault("CRITIQUE_MAX_ITERATIONS", 5),
		BatchConcurrency:   getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
		RangeTablesFile:    getEnvOrDefault("RANGE_TABLES_FILE", ""),
		HistoryLimit:       getEnvIntOrDefault("HISTORY_LIMIT", 10000),
		SessionListDefault: getEnvIntOrDefault("SESSION_LIST_DEFAULT", 50),
	}
}

func validateConfig(config *Config) error {
	switch config.Store.Driver {
	case "memory", "file", "sqlite":
	case "postgres":
		if config.Store.DatabaseURL == "" {
			return errors.ConfigurationError("DATABASE_URL is required for the postgres store")
		}
	default:
		return errors.ConfigurationError("STORE_DRIVER must be one of memory, file, postgres, sqlite")
	}
	if config.Store.Driver == "file" && config.Store.Path == "" {
		return errors.ConfigurationError("STORE_PATH is required for the file store")
	}
	switch config.Validation.SNRMethod {
	case "hansen", "welch", "periodogram":
	default:
		return errors.ConfigurationError("SNR_METHOD must be one of hansen, welch, periodogram")
	}
	if config.Validation.MaxIterations < 1 || config.Validation.MaxIterations > 5 {
		return errors.ConfigurationError("CRITIQUE_MAX_ITERATIONS must be between 1 and 5")
	}
	if config.Validation.SampleRate <= 0 {
		return errors.ConfigurationError("SNR_SAMPLE_RATE must be positive")
	}
	if config.Validation.BatchConcurrency < 1 {
		config.Validation.BatchConcurrency = 1
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
