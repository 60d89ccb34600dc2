// Package marketdata defines the contract between the analysis engine and
// the venues that supply bars and quotes.
package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// PriceKind selects which side of the book a price is read from.
type PriceKind string

const (
	PriceKindLast PriceKind = "last"
	PriceKindMid  PriceKind = "mid"
	PriceKindBid  PriceKind = "bid"
	PriceKindAsk  PriceKind = "ask"
)

// IsValid reports whether k is a known price kind.
func (k PriceKind) IsValid() bool {
	switch k {
	case PriceKindLast, PriceKindMid, PriceKindBid, PriceKindAsk:
		return true
	default:
		return false
	}
}

// HistoryParams narrows a historical bar request.
type HistoryParams struct {
	Limit     int `validate:"min=1,max=1000"`
	StartTime optional.Option[time.Time]
	EndTime   optional.Option[time.Time]
	PriceKind optional.Option[PriceKind]
}

// QuoteParams narrows a current price request.
type QuoteParams struct {
	PriceKind optional.Option[PriceKind]
}

// PriceSource is implemented by every venue. Bars are returned in ascending
// timestamp order and hold at most Limit entries, the most recent ones when
// no start time is given.
type PriceSource interface {
	GetHistoricalPrices(ctx context.Context, identifier string, timeframe Timeframe, params HistoryParams) ([]types.Bar, error)
	GetCurrentPrice(ctx context.Context, identifier string, params QuoteParams) (float64, error)
}

var validate = validator.New()

// Validate checks the limit, the time range ordering and the price kind.
func (p HistoryParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid history parameters", err)
	}

	if p.StartTime.IsSome() && p.EndTime.IsSome() && !p.StartTime.Unwrap().Before(p.EndTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidParameter, "start time must be before end time")
	}

	if p.PriceKind.IsSome() && !p.PriceKind.Unwrap().IsValid() {
		return errors.Newf(errors.ErrCodeUnsupportedPriceKind, "unknown price kind: %q", p.PriceKind.Unwrap())
	}

	return nil
}

// Kind returns the requested price kind, defaulting to last.
func (p HistoryParams) Kind() PriceKind {
	return p.PriceKind.TakeOr(PriceKindLast)
}

// Kind returns the requested price kind, defaulting to last.
func (p QuoteParams) Kind() PriceKind {
	return p.PriceKind.TakeOr(PriceKindLast)
}

// ValidateRequest checks the identifier, timeframe and params of a history request.
func ValidateRequest(identifier string, timeframe Timeframe, params HistoryParams) error {
	if identifier == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "identifier is required")
	}

	if !timeframe.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", timeframe)
	}

	return params.Validate()
}

// TrimToLimit keeps the last limit bars.
func TrimToLimit(bars []types.Bar, limit int) []types.Bar {
	if limit <= 0 || len(bars) <= limit {
		return bars
	}

	return bars[len(bars)-limit:]
}
