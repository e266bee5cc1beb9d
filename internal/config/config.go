package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (CARDRESOLVER_PRICING_API_KEY)
const EnvPrefix = "CARDRESOLVER"

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Matching MatchingConfig `mapstructure:"matching"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// CatalogConfig points at optional seed files imported on startup
type CatalogConfig struct {
	SeedDir string `mapstructure:"seed_dir"`
}

// PricingConfig holds the PriceCharting / SportsCardsPro API settings.
// An empty APIKey disables pricing.
type PricingConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	SportsBaseURL string        `mapstructure:"sports_base_url"`
	TCGBaseURL    string        `mapstructure:"tcg_base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
}

// CacheConfig sizes the in-process price response cache
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type MatchingConfig struct {
	TuningFile string `mapstructure:"tuning_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env, an optional config.yaml and CARDRESOLVER_* environment
// variables, in increasing priority.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	return load(v)
}

// LoadFile is Load with an explicit config file
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("database.path", "./card_resolver.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("catalog.seed_dir", "")

	// AutomaticEnv only sees keys viper knows about
	v.SetDefault("pricing.api_key", "")
	v.SetDefault("pricing.sports_base_url", "https://www.sportscardspro.com/api")
	v.SetDefault("pricing.tcg_base_url", "https://www.pricecharting.com/api")
	v.SetDefault("pricing.timeout", "15s")
	v.SetDefault("pricing.retries", 2)
	v.SetDefault("pricing.min_interval", "300ms")

	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("matching.tuning_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required")
	}
	if cfg.Database.Path == "" {
		return errors.New("database path is required")
	}
	if cfg.Pricing.Retries < 0 {
		return fmt.Errorf("pricing retries must be >= 0, got %d", cfg.Pricing.Retries)
	}
	if cfg.Pricing.Timeout <= 0 {
		return fmt.Errorf("pricing timeout must be positive, got %s", cfg.Pricing.Timeout)
	}
	if cfg.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", cfg.Cache.Size)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", cfg.Log.Format)
	}
	return nil
}

// PricingEnabled reports whether a pricing API key is configured
func (c *Config) PricingEnabled() bool {
	return c.Pricing.APIKey != ""
}
