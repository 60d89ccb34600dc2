// Package config loads the analyzer configuration from YAML and the environment.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

const (
	EnvPolygonAPIKey = "POLYGON_API_KEY"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvProvider      = "ARGO_PROVIDER"
	EnvLogLevel      = "ARGO_LOG_LEVEL"
)

// WindowConfig is one bar window fetched per asset.
type WindowConfig struct {
	Timeframe marketdata.Timeframe `yaml:"timeframe" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 1w"`
	Limit     int                  `yaml:"limit" validate:"min=2,max=1000"`
}

// WindowsConfig holds the three horizons analyzed per asset.
type WindowsConfig struct {
	Short  WindowConfig `yaml:"short"`
	Medium WindowConfig `yaml:"medium"`
	Long   WindowConfig `yaml:"long"`
}

// AnalysisConfig tunes the composition layer.
type AnalysisConfig struct {
	Concurrency       int           `yaml:"concurrency" validate:"min=1,max=64"`
	VolatilityPeriods int           `yaml:"volatility_periods" validate:"min=2"`
	Windows           WindowsConfig `yaml:"windows"`
}

// Config is the root configuration document.
type Config struct {
	marketdata.SourceConfig `yaml:",inline"`

	Analysis AnalysisConfig `yaml:"analysis"`
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SourceConfig: marketdata.SourceConfig{
			Type: marketdata.SourceBinance,
		},
		Analysis: AnalysisConfig{
			Concurrency:       5,
			VolatilityPeriods: 24,
			Windows: WindowsConfig{
				Short:  WindowConfig{Timeframe: marketdata.TimeframeFiveMinutes, Limit: 100},
				Medium: WindowConfig{Timeframe: marketdata.TimeframeOneHour, Limit: 48},
				Long:   WindowConfig{Timeframe: marketdata.TimeframeOneHour, Limit: 30},
			},
		},
		LogLevel: "info",
	}
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "read config", err)
		}

		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parse config", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "load env file", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProvider); v != "" {
		c.SourceConfig.Type = marketdata.SourceType(strings.ToLower(v))
	}

	if v := os.Getenv(EnvPolygonAPIKey); v != "" {
		c.SourceConfig.PolygonAPIKey = v
	}

	if v := os.Getenv(EnvRedisAddr); v != "" {
		if c.SourceConfig.Cache == nil {
			c.SourceConfig.Cache = &marketdata.CacheConfig{}
		}

		c.SourceConfig.Cache.Addr = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
