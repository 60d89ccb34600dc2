package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/utils"
)

// SourceInfo describes a supported price source.
type SourceInfo struct {
	Name           string      `json:"name"`
	DisplayName    string      `json:"displayName"`
	Description    string      `json:"description"`
	RequiresAuth   bool        `json:"requiresAuth"`
	QuoteKinds     []PriceKind `json:"quoteKinds"`
	HistoricalOnly bool        `json:"historicalOnly"`
}

var sourceRegistry = map[SourceType]SourceInfo{
	SourceBinance: {
		Name:         string(SourceBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange klines, ticker prices and book tickers",
		RequiresAuth: false,
		QuoteKinds:   []PriceKind{PriceKindLast, PriceKindMid, PriceKindBid, PriceKindAsk},
	},
	SourcePolygon: {
		Name:         string(SourcePolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market aggregates, last trade and last quote",
		RequiresAuth: true,
		QuoteKinds:   []PriceKind{PriceKindLast, PriceKindMid, PriceKindBid, PriceKindAsk},
	},
	SourceDuckDB: {
		Name:           string(SourceDuckDB),
		DisplayName:    "DuckDB",
		Description:    "Local parquet bars queried and resampled with DuckDB",
		RequiresAuth:   false,
		QuoteKinds:     []PriceKind{PriceKindLast},
		HistoricalOnly: true,
	},
}

// GetSupportedSources returns the names of all supported sources, sorted.
func GetSupportedSources() []string {
	sources := make([]string, 0, len(sourceRegistry))
	for sourceType := range sourceRegistry {
		sources = append(sources, string(sourceType))
	}

	sort.Strings(sources)

	return sources
}

// GetSourceInfo returns metadata for a specific source.
func GetSourceInfo(name string) (SourceInfo, error) {
	info, exists := sourceRegistry[SourceType(name)]
	if !exists {
		return SourceInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", name)
	}

	return info, nil
}

// GetSourceConfigSchema returns the JSON schema of SourceConfig.
func GetSourceConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.ToJSONSchema(SourceConfig{})
}
