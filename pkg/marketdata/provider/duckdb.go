package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"go.uber.org/zap"
)

// DuckDBSource serves bars from a parquet file, resampling the stored rows
// into the requested timeframe with time_bucket.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens the database and exposes cfg.Parquet as the market_data view.
func NewDuckDBSource(cfg marketdata.DuckDBSourceConfig, log *logger.Logger) (*DuckDBSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to open duckdb", err)
	}

	source := &DuckDBSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := source.Initialize(cfg.Parquet); err != nil {
		db.Close()
		return nil, err
	}

	return source, nil
}

// Initialize (re)creates the market_data view over the given parquet path.
func (d *DuckDBSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB price source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet('%s');`,
		strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load parquet %s", path)
	}

	return nil
}

// Close releases the database handle.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

// GetHistoricalPrices aggregates stored rows into timeframe buckets and returns
// the most recent params.Limit of them in ascending order.
func (d *DuckDBSource) GetHistoricalPrices(ctx context.Context, identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
	if err := marketdata.ValidateRequest(identifier, timeframe, params); err != nil {
		return nil, err
	}

	if err := requireLastKind(params); err != nil {
		return nil, err
	}

	query, args, err := d.buildHistoryQuery(identifier, timeframe, params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build history query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to query bars for %s", identifier)
	}
	defer rows.Close()

	bars := make([]types.Bar, 0, params.Limit)

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars stored for %s", identifier)
	}

	// rows come newest first
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	return bars, nil
}

// GetCurrentPrice returns the close of the latest stored row.
func (d *DuckDBSource) GetCurrentPrice(ctx context.Context, identifier string, params marketdata.QuoteParams) (float64, error) {
	if identifier == "" {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "identifier is required")
	}

	if kind := params.Kind(); kind != marketdata.PriceKindLast {
		return 0, errors.Newf(errors.ErrCodeUnsupportedPriceKind, "duckdb source only stores %q prices, got %q", marketdata.PriceKindLast, kind)
	}

	query, args, err := d.sq.Select("close").
		From("market_data").
		Where(squirrel.Eq{"symbol": identifier}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	var price float64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no price stored for %s", identifier)
		}

		return 0, errors.Wrapf(errors.ErrCodePriceFetchFailed, err, "failed to query price for %s", identifier)
	}

	return price, nil
}

func (d *DuckDBSource) buildHistoryQuery(identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) (string, []interface{}, error) {
	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d minutes', time)", timeframe.Minutes())

	builder := d.sq.Select(
		bucket+" AS bucket_time",
		"arg_min(open, time) AS open",
		"max(high) AS high",
		"min(low) AS low",
		"arg_max(close, time) AS close",
		"sum(volume) AS volume",
	).
		From("market_data").
		Where(squirrel.Eq{"symbol": identifier})

	if params.StartTime.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": params.StartTime.Unwrap()})
	}

	if params.EndTime.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": params.EndTime.Unwrap()})
	}

	return builder.
		GroupBy("bucket_time").
		OrderBy("bucket_time DESC").
		Limit(uint64(params.Limit)).
		ToSql()
}

// WriteParquet exports bars for identifier to a parquet file that
// NewDuckDBSource can read.
func WriteParquet(ctx context.Context, path, identifier string, bars []types.Bar) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE bars (
		symbol VARCHAR, time TIMESTAMP, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE
	);`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create staging table", err)
	}

	insert := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("bars").
		Columns("symbol", "time", "open", "high", "low", "close", "volume")

	for _, b := range bars {
		insert = insert.Values(identifier, b.Timestamp.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	if len(bars) > 0 {
		query, args, err := insert.ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert", err)
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert bars", err)
		}
	}

	copyQuery := fmt.Sprintf(`COPY bars TO '%s' (FORMAT PARQUET);`, strings.ReplaceAll(path, "'", "''"))
	if _, err := db.ExecContext(ctx, copyQuery); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to write parquet %s", path)
	}

	return nil
}

// compile-time check
var _ marketdata.PriceSource = (*DuckDBSource)(nil)
