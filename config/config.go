package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Search    SearchConfig
	Cache     CacheConfig
	Patterns  PatternsConfig
	RateLimit RateLimitConfig
	Matching  MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenAIConfig holds the Azure OpenAI completion and embedding settings.
// An empty endpoint disables the LLM pipeline; text matching still works.
type OpenAIConfig struct {
	Endpoint            string `mapstructure:"endpoint"`
	APIKey              string `mapstructure:"api_key"`
	Deployment          string `mapstructure:"deployment"`
	EmbeddingDeployment string `mapstructure:"embedding_deployment"`
	APIVersion          string `mapstructure:"api_version"`
}

// SearchConfig holds the Azure AI Search settings for historical quote lookup
type SearchConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	APIKey    string `mapstructure:"api_key"`
	IndexName string `mapstructure:"index_name"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PatternsConfig holds the learned-pattern log settings
type PatternsConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	FilePath            string  `mapstructure:"file_path"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"`
	OpenAI int `mapstructure:"openai"`
}

// MatchingConfig holds matcher behavior toggles
type MatchingConfig struct {
	DebugLogging bool `mapstructure:"debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quotematch/")

	// Environment variable settings
	v.SetEnvPrefix("QUOTEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when present.
// Existing environment variables always win over file values.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// setDefaults sets default configuration values. Every key needs a default so
// viper resolves it from the environment during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Azure OpenAI defaults
	v.SetDefault("openai.endpoint", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.deployment", "gpt-4o")
	v.SetDefault("openai.embedding_deployment", "text-embedding-3-small")
	v.SetDefault("openai.api_version", "2024-02-01")

	// Azure AI Search defaults
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.index_name", "quotes-index")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Pattern log defaults
	v.SetDefault("patterns.enabled", true)
	v.SetDefault("patterns.file_path", "memory_patterns.json")
	v.SetDefault("patterns.similarity_threshold", 0.8)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.openai", 60)

	// Matcher defaults
	v.SetDefault("matching.debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.Endpoint != "" && config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required when an endpoint is set (set QUOTEMATCH_OPENAI_API_KEY)")
	}

	if config.Search.Endpoint != "" && config.Search.APIKey == "" {
		return fmt.Errorf("search API key is required when an endpoint is set (set QUOTEMATCH_SEARCH_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if t := config.Patterns.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("pattern similarity threshold must be in (0, 1], got: %v", t)
	}

	return nil
}
