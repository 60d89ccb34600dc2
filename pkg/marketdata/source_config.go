package marketdata

import (
	"encoding/json"
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// SourceType names a price source implementation.
type SourceType string

const (
	SourceBinance SourceType = "binance"
	SourcePolygon SourceType = "polygon"
	SourceDuckDB  SourceType = "duckdb"
)

// DuckDBSourceConfig points the DuckDB source at a local parquet file of bars.
type DuckDBSourceConfig struct {
	// Path of the DuckDB database, empty for in-memory.
	Path string `json:"path,omitempty" yaml:"path" jsonschema:"title=Database Path,description=DuckDB database file; empty for in-memory"`
	// Parquet is the bars file or glob, with columns symbol, time, open, high, low, close, volume.
	Parquet string `json:"parquet" yaml:"parquet" jsonschema:"title=Parquet File,description=Parquet file or glob holding OHLCV bars" validate:"required"`
}

// CacheConfig enables the Redis read-through cache in front of a source.
type CacheConfig struct {
	Addr     string        `json:"addr" yaml:"addr" jsonschema:"title=Redis Address,description=host:port of the Redis server" validate:"required,hostname_port"`
	Password string        `json:"password,omitempty" yaml:"password" jsonschema:"title=Redis Password"`
	DB       int           `json:"db,omitempty" yaml:"db" jsonschema:"title=Redis DB" validate:"min=0"`
	TTL      time.Duration `json:"ttl,omitempty" yaml:"ttl" jsonschema:"title=TTL,description=Lifetime of cached bars"`
	Prefix   string        `json:"prefix,omitempty" yaml:"prefix" jsonschema:"title=Key Prefix"`
}

// SourceConfig selects and configures one price source.
type SourceConfig struct {
	Type          SourceType          `json:"type" yaml:"provider" jsonschema:"title=Provider,required,enum=binance,enum=polygon,enum=duckdb" validate:"required,oneof=binance polygon duckdb"`
	PolygonAPIKey string              `json:"polygonApiKey,omitempty" yaml:"polygon_api_key" jsonschema:"title=Polygon API Key" validate:"required_if=Type polygon"`
	DuckDB        *DuckDBSourceConfig `json:"duckdb,omitempty" yaml:"duckdb" validate:"required_if=Type duckdb"`
	Cache         *CacheConfig        `json:"cache,omitempty" yaml:"redis"`
}

// Validate checks the struct tags of the config and its nested sections.
func (c SourceConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid price source configuration", err)
	}

	return nil
}

// ParseSourceConfig decodes and validates a JSON source configuration.
func ParseSourceConfig(jsonConfig string) (SourceConfig, error) {
	var config SourceConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return SourceConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return SourceConfig{}, err
	}

	return config, nil
}
