package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Model     ModelConfig
	OCR       OCRConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelConfig holds generative-model collaborator configuration
type ModelConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Name            string        `mapstructure:"name"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
}

// OCRConfig holds OCR collaborator configuration
type OCRConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	Language      string `mapstructure:"language"`
	MinTextLength int    `mapstructure:"min_text_length"`
}

// CacheConfig holds analysis-cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/labelscan/")

	v.SetEnvPrefix("LABELSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults carry a bare deploy.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("model.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("model.name", "google/gemini-flash-1.5")
	v.SetDefault("model.timeout", "30s")
	v.SetDefault("model.max_attempts", 5)
	v.SetDefault("model.temperature", 0.3)
	v.SetDefault("model.max_output_tokens", 2048)

	v.SetDefault("ocr.base_url", "http://localhost:8090")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_text_length", 20)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 60)
}

// validate validates the configuration. The model API key is checked at
// call time, not here, so the service can boot without one and surface
// a credential error per request.
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}
	if config.Model.MaxAttempts < 1 {
		return fmt.Errorf("model.max_attempts must be at least 1")
	}
	if config.Model.Timeout <= 0 {
		return fmt.Errorf("model.timeout must be positive")
	}
	if config.RateLimit.PerIP < 1 {
		return fmt.Errorf("ratelimit.per_ip must be at least 1")
	}
	return nil
}
