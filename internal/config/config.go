package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	Language string `yaml:"language" mapstructure:"language"`
}

// DiscoveryConfig configures the lead discovery batch pipeline.
type DiscoveryConfig struct {
	DefaultLocation    string   `yaml:"default_location" mapstructure:"default_location"`
	QueryDelayMS       int      `yaml:"query_delay_ms" mapstructure:"query_delay_ms"`
	WebsiteTimeoutSecs int      `yaml:"website_timeout_secs" mapstructure:"website_timeout_secs"`
	RateLimit          float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	ParallelDetails    bool     `yaml:"parallel_details" mapstructure:"parallel_details"`
	DetailWorkers      int      `yaml:"detail_workers" mapstructure:"detail_workers"`
	TargetLocations    []string `yaml:"target_locations" mapstructure:"target_locations"`
	HighValueTypes     []string `yaml:"high_value_types" mapstructure:"high_value_types"`
}

// QueryDelay returns the inter-query delay as a duration.
func (c *DiscoveryConfig) QueryDelay() time.Duration {
	return time.Duration(c.QueryDelayMS) * time.Millisecond
}

// WebsiteTimeout returns the website fetch timeout as a duration.
func (c *DiscoveryConfig) WebsiteTimeout() time.Duration {
	return time.Duration(c.WebsiteTimeoutSecs) * time.Second
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns the default configuration values keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"store.driver": "sqlite",
		"store.path":   "leadgen.db",
		// Empty defaults so viper binds the env vars for keys that have no
		// meaningful default value.
		"store.database_url":             "",
		"google.key":                     "",
		"google.language":                "de",
		"discovery.default_location":     "Wien, Austria",
		"discovery.query_delay_ms":       2000,
		"discovery.website_timeout_secs": 10,
		"discovery.rate_limit":           10.0,
		"discovery.parallel_details":     false,
		"discovery.detail_workers":       4,
		"discovery.target_locations": []string{
			"wien", "vienna", "korneuburg", "klosterneuburg",
			"stockerau", "graz", "linz", "salzburg",
		},
		"discovery.high_value_types": []string{
			"restaurant", "hotel", "arzt", "rechtsanwalt",
			"handwerk", "immobilien", "gastro",
		},
		"server.port":            8080,
		"server.allowed_origins": []string{"*"},
		"log.level":              "info",
		"log.format":             "json",
	}
}

// Validate checks that the configuration required for the given scope is present.
func (c *Config) Validate(scope string) error {
	switch scope {
	case "discovery":
		if c.Google.Key == "" {
			return eris.New("config: google.key is required (set LEADGEN_GOOGLE_KEY)")
		}
	case "store":
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
