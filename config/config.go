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
	Providers ProvidersConfig
	Mongo     MongoConfig
	Cache     CacheConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds one product-data provider's endpoint and credential
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// ProvidersConfig holds the lookup chain configuration. GoUPC is skipped
// entirely when its key is empty; UPCItemDB falls back to its trial endpoint
// without a key; OpenFoodFacts never needs one.
type ProvidersConfig struct {
	GoUPC         ProviderConfig `mapstructure:"goupc"`
	UPCItemDB     ProviderConfig `mapstructure:"upcitemdb"`
	OpenFoodFacts ProviderConfig `mapstructure:"openfoodfacts"`
	Timeout       time.Duration  `mapstructure:"timeout"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI          string        `mapstructure:"uri"`
	Database     string        `mapstructure:"database"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig holds lookup cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// EventsConfig holds stock movement event publishing configuration.
// Publishing is disabled when AMQPURL is empty.
type EventsConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stockroom/")

	// Environment variable settings
	v.SetEnvPrefix("STOCKROOM")
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Provider defaults
	v.SetDefault("providers.goupc.base_url", "https://go-upc.com")
	v.SetDefault("providers.goupc.api_key", "")
	v.SetDefault("providers.upcitemdb.base_url", "https://api.upcitemdb.com")
	v.SetDefault("providers.upcitemdb.api_key", "")
	v.SetDefault("providers.openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("providers.timeout", "10s")

	// Mongo defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "stockroom")
	v.SetDefault("mongo.read_timeout", "5s")
	v.SetDefault("mongo.write_timeout", "5s")

	// Cache defaults
	v.SetDefault("cache.ttl", "168h") // 7 days

	// Events defaults
	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.queue", "stock-movements")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 20)
	v.SetDefault("ratelimit.burst", 40)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Providers.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got: %s", config.Providers.Timeout)
	}

	if config.Providers.UPCItemDB.BaseURL == "" || config.Providers.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("provider base URLs must not be empty")
	}

	if config.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required (set STOCKROOM_MONGO_URI)")
	}

	if config.Events.AMQPURL != "" && config.Events.Queue == "" {
		return fmt.Errorf("events queue is required when an AMQP URL is configured")
	}

	return nil
}
