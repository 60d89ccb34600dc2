package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"go.uber.org/zap"
)

// polygonLookbackFactor widens the aggregate window when no start time is
// given so that market closures still leave Limit bars in range.
const polygonLookbackFactor = 4

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the polygon REST client so tests can substitute it.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
	GetLastTrade(ctx context.Context, params *models.GetLastTradeParams, options ...models.RequestOption) (*models.GetLastTradeResponse, error)
	GetLastQuote(ctx context.Context, params *models.GetLastQuoteParams, options ...models.RequestOption) (*models.GetLastQuoteResponse, error)
}

// PolygonClient is a PriceSource backed by the Polygon.io REST API.
type PolygonClient struct {
	apiClient PolygonAPIClient
	logger    *logger.Logger
	now       func() time.Time
}

// NewPolygonClient creates a client authenticated with apiKey.
func NewPolygonClient(apiKey string, log *logger.Logger) (marketdata.PriceSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}, log), nil
}

// NewPolygonClientWithAPI creates a client around a custom API implementation.
func NewPolygonClientWithAPI(api PolygonAPIClient, log *logger.Logger) *PolygonClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PolygonClient{
		apiClient: api,
		logger:    log,
		now:       time.Now,
	}
}

// GetHistoricalPrices lists aggregates newest first, keeps the most recent
// params.Limit and returns them in ascending order.
func (c *PolygonClient) GetHistoricalPrices(ctx context.Context, identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
	if err := marketdata.ValidateRequest(identifier, timeframe, params); err != nil {
		return nil, err
	}

	if err := requireLastKind(params); err != nil {
		return nil, err
	}

	end := params.EndTime.TakeOr(c.now())
	start := params.StartTime.TakeOr(end.Add(-time.Duration(params.Limit*polygonLookbackFactor) * timeframe.Duration()))

	//nolint:exhaustruct // third-party struct with many optional fields
	query := models.ListAggsParams{
		Ticker:     identifier,
		Multiplier: timeframe.Multiplier(),
		Timespan:   timeframe.PolygonTimespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Desc).WithLimit(params.Limit)

	iter := c.apiClient.ListAggs(ctx, query)

	bars := make([]types.Bar, 0, params.Limit)
	for len(bars) < params.Limit && iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Timestamp: time.Time(agg.Timestamp).UTC(),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to list aggregates for %s", identifier)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no aggregates returned for %s %s", identifier, timeframe)
	}

	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	c.logger.Debug("Fetched aggregates",
		zap.String("ticker", identifier),
		zap.String("timeframe", string(timeframe)),
		zap.Int("count", len(bars)),
	)

	return bars, nil
}

// GetCurrentPrice returns the last trade price or a last quote derived price.
func (c *PolygonClient) GetCurrentPrice(ctx context.Context, identifier string, params marketdata.QuoteParams) (float64, error) {
	if identifier == "" {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "identifier is required")
	}

	kind := params.Kind()

	switch kind {
	case marketdata.PriceKindLast:
		//nolint:exhaustruct // third-party struct
		res, err := c.apiClient.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: identifier})
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodePriceFetchFailed, err, "failed to fetch last trade for %s", identifier)
		}

		if res == nil || res.Results.Price == 0 {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no last trade for %s", identifier)
		}

		return res.Results.Price, nil
	case marketdata.PriceKindMid, marketdata.PriceKindBid, marketdata.PriceKindAsk:
		//nolint:exhaustruct // third-party struct
		res, err := c.apiClient.GetLastQuote(ctx, &models.GetLastQuoteParams{Ticker: identifier})
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodePriceFetchFailed, err, "failed to fetch last quote for %s", identifier)
		}

		if res == nil {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no last quote for %s", identifier)
		}

		return quoteFromBook(kind, res.Results.BidPrice, res.Results.AskPrice), nil
	default:
		return 0, errors.Newf(errors.ErrCodeUnsupportedPriceKind, "unsupported price kind: %q", kind)
	}
}

// polygonClientWrapper adapts *polygon.Client to PolygonAPIClient.
type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

func (w *polygonClientWrapper) GetLastTrade(ctx context.Context, params *models.GetLastTradeParams, options ...models.RequestOption) (*models.GetLastTradeResponse, error) {
	return w.client.GetLastTrade(ctx, params, options...)
}

func (w *polygonClientWrapper) GetLastQuote(ctx context.Context, params *models.GetLastQuoteParams, options ...models.RequestOption) (*models.GetLastQuoteResponse, error) {
	return w.client.GetLastQuote(ctx, params, options...)
}
