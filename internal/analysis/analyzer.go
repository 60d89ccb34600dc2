// Package analysis assembles the leaf indicator engines into a multi-timeframe
// view of an asset. It is the only layer that talks to a price source.
package analysis

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/metrics"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"go.uber.org/zap"
)

const (
	DefaultConcurrency       = 5
	DefaultVolatilityPeriods = 24
)

// Window is one bar request made per asset.
type Window struct {
	Timeframe marketdata.Timeframe
	Limit     int
}

// Windows are the three horizons fetched per asset.
type Windows struct {
	Short  Window
	Medium Window
	Long   Window
}

// DefaultWindows returns 100 five minute bars, 48 hourly bars and 30 hourly bars.
func DefaultWindows() Windows {
	return Windows{
		Short:  Window{Timeframe: marketdata.TimeframeFiveMinutes, Limit: 100},
		Medium: Window{Timeframe: marketdata.TimeframeOneHour, Limit: 48},
		Long:   Window{Timeframe: marketdata.TimeframeOneHour, Limit: 30},
	}
}

// ProgressFunc is called after every asset of a batch completes.
type ProgressFunc func(done, total int)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEngines replaces the indicator engines.
func WithEngines(engines indicator.Engines) Option {
	return func(a *Analyzer) { a.engines = engines }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(a *Analyzer) { a.logger = log }
}

// WithMetrics records every analysis in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithWindows overrides the bar windows.
func WithWindows(w Windows) Option {
	return func(a *Analyzer) { a.windows = w }
}

// WithConcurrency caps the number of assets analyzed at once in a batch.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) { a.concurrency = n }
}

// WithVolatilityPeriods sets how many trailing medium bars feed the volatility.
func WithVolatilityPeriods(n int) Option {
	return func(a *Analyzer) { a.volatilityPeriods = n }
}

// WithProgress registers a batch progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) { a.progress = fn }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// Analyzer produces AssetAnalysis values from a PriceSource.
// It is safe for concurrent use.
type Analyzer struct {
	source            marketdata.PriceSource
	engines           indicator.Engines
	logger            *logger.Logger
	metrics           *metrics.Metrics
	windows           Windows
	concurrency       int
	volatilityPeriods int
	progress          ProgressFunc
	now               func() time.Time
}

// NewAnalyzer creates an Analyzer reading bars from source.
func NewAnalyzer(source marketdata.PriceSource, opts ...Option) (*Analyzer, error) {
	if source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "price source is required")
	}

	a := &Analyzer{
		source:            source,
		engines:           indicator.NewEngines(),
		logger:            logger.NewNopLogger(),
		windows:           DefaultWindows(),
		concurrency:       DefaultConcurrency,
		volatilityPeriods: DefaultVolatilityPeriods,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.engines.Validate(); err != nil {
		return nil, err
	}

	if a.concurrency < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "concurrency must be at least 1, got %d", a.concurrency)
	}

	if a.volatilityPeriods < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "volatility periods must be at least 2, got %d", a.volatilityPeriods)
	}

	for _, w := range []Window{a.windows.Short, a.windows.Medium, a.windows.Long} {
		if !w.Timeframe.IsValid() {
			return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "invalid window timeframe %q", w.Timeframe)
		}

		if w.Limit < 2 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "window limit must be at least 2, got %d", w.Limit)
		}
	}

	return a, nil
}

// AnalyzeAsset fetches the three windows for id and derives every signal.
// A panic raised by the price source or an engine is returned as an
// ErrCodeAnalysisFailed error.
func (a *Analyzer) AnalyzeAsset(ctx context.Context, id string) (analysis types.AssetAnalysis, err error) {
	done := a.metrics.Start()
	defer func() { done(err) }()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Asset analysis panicked",
				zap.String("asset", id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)

			analysis = types.AssetAnalysis{}
			err = errors.Newf(errors.ErrCodeAnalysisFailed, "analysis of %s panicked: %v", id, r)
		}
	}()

	short, err := a.fetch(ctx, id, "short", a.windows.Short)
	if err != nil {
		return types.AssetAnalysis{}, err
	}

	medium, err := a.fetch(ctx, id, "medium", a.windows.Medium)
	if err != nil {
		return types.AssetAnalysis{}, err
	}

	long, err := a.fetch(ctx, id, "long", a.windows.Long)
	if err != nil {
		return types.AssetAnalysis{}, err
	}

	lastPrice := short.Last().Close

	return types.AssetAnalysis{
		AssetID:   id,
		Timestamp: a.now().UTC(),
		LastPrice: lastPrice,
		Changes: types.PriceChanges{
			ThirtyMinutes: formatChange(percentChange(short, 6)),
			OneHour:       formatChange(percentChange(medium, 1)),
			FourHours:     formatChange(percentChange(long, 1)),
		},
		KeySignals: types.KeySignals{
			ShortTerm:  a.shortTermSignals(short),
			MediumTerm: a.mediumTermSignals(medium),
			LongTerm:   longTermSignals(lastPrice),
		},
		Volatility:    volatility(medium, a.volatilityPeriods),
		EngineVersion: version.GetVersion(),
	}, nil
}

func (a *Analyzer) fetch(ctx context.Context, id, name string, w Window) (types.Series, error) {
	bars, err := a.source.GetHistoricalPrices(ctx, id, w.Timeframe, marketdata.HistoryParams{Limit: w.Limit})
	if err != nil {
		return types.Series{}, errors.Wrapf(fetchErrorCode(err), err, "failed to fetch %s window for %s", name, id)
	}

	a.logger.Debug("Fetched window",
		zap.String("asset", id),
		zap.String("window", name),
		zap.String("timeframe", string(w.Timeframe)),
		zap.Int("bars", len(bars)),
	)

	if len(bars) == 0 {
		return types.Series{}, errors.Newf(errors.ErrCodeDataNotFound, "no %s bars for %s", name, id)
	}

	return types.NewSeries(bars), nil
}

// fetchErrorCode keeps the code of a typed source error and falls back to
// ErrCodeAnalysisFailed for anything else.
func fetchErrorCode(err error) errors.ErrorCode {
	if code := errors.GetCode(err); code != errors.ErrCodeUnknown {
		return code
	}

	return errors.ErrCodeAnalysisFailed
}
