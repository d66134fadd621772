// Package config loads application configuration from an optional YAML file
// and LEADSCORE_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/homesignal/leadscore/internal/scoring"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Rerank RerankConfig `yaml:"rerank" mapstructure:"rerank"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            int     `yaml:"port" mapstructure:"port"`
	RatePerSecond   float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst       int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	ShutdownTimeout int     `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// ModelConfig configures the model artifact and its unavailability policy.
type ModelConfig struct {
	ArtifactPath string                 `yaml:"artifact_path" mapstructure:"artifact_path"`
	Fallback     scoring.FallbackPolicy `yaml:"fallback" mapstructure:"fallback"`
}

// RerankConfig configures the comment reranking stage. An empty RulesPath
// selects the built-in rule table.
type RerankConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// BatchConfig configures batch scoring.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
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
	v.SetEnvPrefix("LEADSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("model.artifact_path", "model.json")
	v.SetDefault("model.fallback.enabled", false)
	v.SetDefault("model.fallback.neutral_score", 50)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot produce a working pipeline.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server port %d out of range", c.Server.Port)
	}
	if c.Model.Fallback.Enabled && (c.Model.Fallback.NeutralScore < 0 || c.Model.Fallback.NeutralScore > 100) {
		return eris.Errorf("config: fallback neutral score %d out of range", c.Model.Fallback.NeutralScore)
	}
	if c.Batch.MaxConcurrent < 1 {
		return eris.New("config: batch.max_concurrent must be at least 1")
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
