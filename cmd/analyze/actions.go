package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func assetAction(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		result, err := a.analyzer.AnalyzeAsset(ctx, cmd.String("symbol"))
		if err != nil {
			return err
		}

		return a.print(result)
	})
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	symbols := parseSymbols(cmd.StringSlice("symbols"))
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	var opts []analysis.Option

	if cmd.Bool("progress") {
		bar := progressbar.NewOptions(len(symbols),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Analyzing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()

		opts = append(opts, analysis.WithProgress(func(done, _ int) {
			_ = bar.Set(done)
		}))
	}

	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		return a.print(a.analyzer.AnalyzeBatch(ctx, symbols))
	}, opts...)
}

func snapshotAction(ctx context.Context, cmd *cli.Command) error {
	timeframe, err := marketdata.ParseTimeframe(cmd.String("timeframe"))
	if err != nil {
		return err
	}

	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		snapshot, err := a.analyzer.Snapshot(ctx, cmd.String("symbol"), timeframe, int(cmd.Int("limit")))
		if err != nil {
			return err
		}

		return a.print(snapshot)
	})
}

// Quote is the output of the quote command.
type Quote struct {
	Symbol    string               `json:"symbol"`
	Kind      marketdata.PriceKind `json:"kind"`
	Price     float64              `json:"price"`
	Timestamp time.Time            `json:"timestamp"`
}

func quoteAction(ctx context.Context, cmd *cli.Command) error {
	kind := marketdata.PriceKind(cmd.String("kind"))

	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		price, err := a.source.GetCurrentPrice(ctx, cmd.String("symbol"), marketdata.QuoteParams{
			PriceKind: optional.Some(kind),
		})
		if err != nil {
			return err
		}

		return a.print(Quote{
			Symbol:    cmd.String("symbol"),
			Kind:      kind,
			Price:     price,
			Timestamp: time.Now().UTC(),
		})
	})
}

func sourcesAction(_ context.Context, cmd *cli.Command) error {
	infos := make([]marketdata.SourceInfo, 0)

	for _, name := range marketdata.GetSupportedSources() {
		info, err := marketdata.GetSourceInfo(name)
		if err != nil {
			return err
		}

		infos = append(infos, info)
	}

	return writeJSON(cmd.Root().Writer, infos)
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	timeframe, err := marketdata.ParseTimeframe(cmd.String("timeframe"))
	if err != nil {
		return err
	}

	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		symbol := cmd.String("symbol")

		bars, err := a.source.GetHistoricalPrices(ctx, symbol, timeframe, marketdata.HistoryParams{
			Limit: int(cmd.Int("limit")),
		})
		if err != nil {
			return err
		}

		if err := provider.WriteParquet(ctx, cmd.String("out"), symbol, bars); err != nil {
			return err
		}

		a.logger.Info("Exported bars",
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)),
			zap.Int("bars", len(bars)),
			zap.String("path", cmd.String("out")),
		)

		return nil
	})
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	symbols := parseSymbols(cmd.StringSlice("symbols"))
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	return withApp(ctx, cmd, func(ctx context.Context, a *app) error {
		runBatch := func() {
			if err := a.print(a.analyzer.AnalyzeBatch(ctx, symbols)); err != nil {
				a.logger.Error("Failed to write batch result", zap.Error(err))
			}
		}

		scheduler, err := newScheduler(cmd.String("schedule"), runBatch)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

		server := &http.Server{
			Addr:              cmd.String("metrics-addr"),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			a.logger.Info("Serving metrics", zap.String("addr", server.Addr))

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()

		runBatch()
		scheduler.Start()
		a.logger.Info("Scheduler started", zap.String("schedule", cmd.String("schedule")))

		<-ctx.Done()

		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})
}

// newScheduler runs job on schedule. A tick that fires while the previous
// run is still going is skipped.
func newScheduler(schedule string, job func()) (*cron.Cron, error) {
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if _, err := scheduler.AddFunc(schedule, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	return scheduler, nil
}
