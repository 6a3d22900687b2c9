// Package config loads service configuration from file and environment.
// Files are looked up as odialingua.yaml in the working directory and
// ~/.odialingua/; every key can be overridden through ODIALINGUA_* variables
// (dots become underscores, e.g. ODIALINGUA_PROVIDER_NAME).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Search    SearchConfig    `mapstructure:"search"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Store     StoreConfig     `mapstructure:"store"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ProviderConfig selects the generative-model backend.
type ProviderConfig struct {
	Name    string `mapstructure:"name"` // groq, openai, gemini, claude
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// SearchConfig configures the evidence sources.
type SearchConfig struct {
	SerpAPIKey    string        `mapstructure:"serpapi_key"`
	TavilyAPIKey  string        `mapstructure:"tavily_key"`
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
}

// WeatherConfig configures the weather provider.
type WeatherConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SpeechConfig configures text-to-speech and speech-to-text.
type SpeechConfig struct {
	SarvamAPIKey string `mapstructure:"sarvam_key"`
}

// StoreConfig selects and configures conversation persistence.
type StoreConfig struct {
	Backend  string         `mapstructure:"backend"` // inmemory, redis, mongo, postgres
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds Redis settings for the session store.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MongoConfig holds MongoDB settings for the session store.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// PostgresConfig holds PostgreSQL settings for the session store.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Disable     bool   `mapstructure:"disable"`
	Environment string `mapstructure:"environment"`
}

// Load reads configuration from file and environment and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("odialingua")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.odialingua")

	v.SetEnvPrefix("ODIALINGUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, environment and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("provider.name", "groq")
	v.SetDefault("provider.model", "llama-3.3-70b-versatile")
	v.SetDefault("search.source_timeout", 8*time.Second)
	v.SetDefault("search.cache_ttl", 5*time.Minute)
	v.SetDefault("search.rate_per_second", 2.0)
	v.SetDefault("search.rate_burst", 4)
	v.SetDefault("store.backend", "inmemory")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "odialingua")
	v.SetDefault("store.mongo.collection", "conversations")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "postgres")
	v.SetDefault("store.postgres.dbname", "odialingua")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("telemetry.environment", "development")
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	v := NewValidator()

	v.RequireNonEmpty("server.addr", c.Server.Addr)
	v.ValidateOneOf("provider.name", c.Provider.Name, "groq", "openai", "gemini", "claude")
	v.RequireNonEmpty("provider.model", c.Provider.Model)
	v.ValidateOneOf("store.backend", c.Store.Backend, "inmemory", "redis", "mongo", "postgres")

	switch c.Store.Backend {
	case "redis":
		v.RequireNonEmpty("store.redis.addr", c.Store.Redis.Addr)
		v.ValidateRange("store.redis.db", c.Store.Redis.DB, 0, 15)
	case "mongo":
		v.RequireNonEmpty("store.mongo.uri", c.Store.Mongo.URI)
		v.RequireNonEmpty("store.mongo.database", c.Store.Mongo.Database)
	case "postgres":
		v.RequireNonEmpty("store.postgres.host", c.Store.Postgres.Host)
		v.ValidatePort("store.postgres.port", c.Store.Postgres.Port)
		v.RequireNonEmpty("store.postgres.user", c.Store.Postgres.User)
		v.RequireNonEmpty("store.postgres.dbname", c.Store.Postgres.DBName)
		v.ValidateOneOf("store.postgres.sslmode", c.Store.Postgres.SSLMode,
			"disable", "require", "verify-ca", "verify-full")
	}

	if c.Search.RatePerSecond != 0 {
		v.ValidateFloatRange("search.rate_per_second", c.Search.RatePerSecond, 0.1, 100)
	}

	return v.Error()
}
