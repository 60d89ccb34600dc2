package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"go.uber.org/zap"
)

// BinanceKlinesService is the subset of the klines endpoint used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinancePricesService is the subset of the ticker price endpoint used here.
type BinancePricesService interface {
	Symbol(symbol string) BinancePricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// BinanceBookTickersService is the subset of the book ticker endpoint used here.
type BinanceBookTickersService interface {
	Symbol(symbol string) BinanceBookTickersService
	Do(ctx context.Context) ([]*binance.BookTicker, error)
}

// BinanceAPIClient abstracts *binance.Client so tests can substitute it.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
	NewListPricesService() BinancePricesService
	NewListBookTickersService() BinanceBookTickersService
}

// BinanceClient is a PriceSource backed by the Binance spot REST API.
type BinanceClient struct {
	apiClient BinanceAPIClient
	logger    *logger.Logger
}

// NewBinanceClient creates a client for the public market data endpoints.
func NewBinanceClient(log *logger.Logger) (marketdata.PriceSource, error) {
	return NewBinanceClientWithAPI(&binanceClientWrapper{client: binance.NewClient("", "")}, log), nil
}

// NewBinanceClientWithAPI creates a client around a custom API implementation.
func NewBinanceClientWithAPI(api BinanceAPIClient, log *logger.Logger) *BinanceClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceClient{
		apiClient: api,
		logger:    log,
	}
}

// GetHistoricalPrices fetches up to params.Limit klines in ascending order.
func (c *BinanceClient) GetHistoricalPrices(ctx context.Context, identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
	if err := marketdata.ValidateRequest(identifier, timeframe, params); err != nil {
		return nil, err
	}

	if err := requireLastKind(params); err != nil {
		return nil, err
	}

	svc := c.apiClient.NewKlinesService().
		Symbol(identifier).
		Interval(timeframe.BinanceInterval()).
		Limit(params.Limit)

	if params.StartTime.IsSome() {
		svc = svc.StartTime(params.StartTime.Unwrap().UnixMilli())
	}

	if params.EndTime.IsSome() {
		svc = svc.EndTime(params.EndTime.Unwrap().UnixMilli())
	}

	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to fetch klines for %s", identifier)
	}

	if len(klines) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no klines returned for %s %s", identifier, timeframe)
	}

	bars, err := convertKlines(klines)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched klines",
		zap.String("symbol", identifier),
		zap.String("interval", string(timeframe)),
		zap.Int("count", len(bars)),
	)

	return marketdata.TrimToLimit(bars, params.Limit), nil
}

// GetCurrentPrice returns the last traded price or a book ticker derived price.
func (c *BinanceClient) GetCurrentPrice(ctx context.Context, identifier string, params marketdata.QuoteParams) (float64, error) {
	if identifier == "" {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "identifier is required")
	}

	kind := params.Kind()

	switch kind {
	case marketdata.PriceKindLast:
		prices, err := c.apiClient.NewListPricesService().Symbol(identifier).Do(ctx)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodePriceFetchFailed, err, "failed to fetch price for %s", identifier)
		}

		if len(prices) == 0 {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no price returned for %s", identifier)
		}

		return parseDecimal(prices[0].Price, "price")
	case marketdata.PriceKindMid, marketdata.PriceKindBid, marketdata.PriceKindAsk:
		tickers, err := c.apiClient.NewListBookTickersService().Symbol(identifier).Do(ctx)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodePriceFetchFailed, err, "failed to fetch book ticker for %s", identifier)
		}

		if len(tickers) == 0 {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no book ticker returned for %s", identifier)
		}

		bid, err := parseDecimal(tickers[0].BidPrice, "bid")
		if err != nil {
			return 0, err
		}

		ask, err := parseDecimal(tickers[0].AskPrice, "ask")
		if err != nil {
			return 0, err
		}

		return quoteFromBook(kind, bid, ask), nil
	default:
		return 0, errors.Newf(errors.ErrCodeUnsupportedPriceKind, "unsupported price kind: %q", kind)
	}
}

// convertKlines maps Binance klines to bars stamped with the kline open time.
func convertKlines(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := [5]float64{}
		for i, raw := range [5]string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q", raw)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	return bars, nil
}

func parseDecimal(raw, field string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid %s %q", field, raw)
	}

	return v, nil
}

// binanceClientWrapper adapts *binance.Client to BinanceAPIClient.
type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

func (w *binanceClientWrapper) NewListPricesService() BinancePricesService {
	return &binancePricesServiceWrapper{service: w.client.NewListPricesService()}
}

func (w *binanceClientWrapper) NewListBookTickersService() BinanceBookTickersService {
	return &binanceBookTickersServiceWrapper{service: w.client.NewListBookTickersService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)
	return w
}

func (w *binanceKlinesServiceWrapper) Limit(limit int) BinanceKlinesService {
	w.service = w.service.Limit(limit)
	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service = w.service.StartTime(startTime)
	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service = w.service.EndTime(endTime)
	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type binancePricesServiceWrapper struct {
	service *binance.ListPricesService
}

func (w *binancePricesServiceWrapper) Symbol(symbol string) BinancePricesService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binancePricesServiceWrapper) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return w.service.Do(ctx)
}

type binanceBookTickersServiceWrapper struct {
	service *binance.ListBookTickersService
}

func (w *binanceBookTickersServiceWrapper) Symbol(symbol string) BinanceBookTickersService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceBookTickersServiceWrapper) Do(ctx context.Context) ([]*binance.BookTicker, error) {
	return w.service.Do(ctx)
}
