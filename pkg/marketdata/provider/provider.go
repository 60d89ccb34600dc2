// Package provider implements marketdata.PriceSource for concrete venues.
package provider

import (
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
)

// NewPriceSource creates the source named by cfg.Type, wrapped in a Redis
// read-through cache when cfg.Cache is set.
func NewPriceSource(cfg marketdata.SourceConfig, log *logger.Logger) (marketdata.PriceSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	var (
		source marketdata.PriceSource
		err    error
	)

	switch cfg.Type {
	case marketdata.SourceBinance:
		source, err = NewBinanceClient(log)
	case marketdata.SourcePolygon:
		source, err = NewPolygonClient(cfg.PolygonAPIKey, log)
	case marketdata.SourceDuckDB:
		source, err = NewDuckDBSource(*cfg.DuckDB, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	if cfg.Cache != nil {
		return NewRedisCache(source, *cfg.Cache, log), nil
	}

	return source, nil
}

// requireLastKind rejects bar requests for anything but traded prices.
func requireLastKind(params marketdata.HistoryParams) error {
	if kind := params.Kind(); kind != marketdata.PriceKindLast {
		return errors.Newf(errors.ErrCodeUnsupportedPriceKind, "historical bars are only available for %q prices, got %q", marketdata.PriceKindLast, kind)
	}

	return nil
}

// quoteFromBook picks the bid, the ask or their midpoint.
func quoteFromBook(kind marketdata.PriceKind, bid, ask float64) float64 {
	switch kind {
	case marketdata.PriceKindBid:
		return bid
	case marketdata.PriceKindAsk:
		return ask
	default:
		return (bid + ask) / 2
	}
}
