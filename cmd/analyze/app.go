package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/metrics"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app is the wiring shared by every analysis command.
type app struct {
	cfg      config.Config
	logger   *logger.Logger
	source   marketdata.PriceSource
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	analyzer *analysis.Analyzer
	out      io.Writer
}

// newApp loads the configuration, applies the global flag overrides and
// builds the price source and analyzer. Callers must call close.
func newApp(cmd *cli.Command, opts ...analysis.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return buildApp(cfg, log, cmd.Root().Writer, opts...)
}

// loadConfig reads the dotenv file and the YAML configuration, then applies
// the global flag overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if p := cmd.String("provider"); p != "" {
		cfg.SourceConfig.Type = marketdata.SourceType(p)
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func buildApp(cfg config.Config, log *logger.Logger, out io.Writer, opts ...analysis.Option) (*app, error) {
	source, err := provider.NewPriceSource(cfg.SourceConfig, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()

	m, err := metrics.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	base := []analysis.Option{
		analysis.WithLogger(log),
		analysis.WithMetrics(m),
		analysis.WithWindows(windowsFromConfig(cfg.Analysis.Windows)),
		analysis.WithConcurrency(cfg.Analysis.Concurrency),
		analysis.WithVolatilityPeriods(cfg.Analysis.VolatilityPeriods),
	}

	analyzer, err := analysis.NewAnalyzer(source, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		source:   source,
		registry: registry,
		metrics:  m,
		analyzer: analyzer,
		out:      out,
	}, nil
}

func (a *app) close() {
	if closer, ok := a.source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("failed to close price source", zap.Error(err))
		}
	}

	_ = a.logger.Sync()
}

// print writes v as indented JSON.
func (a *app) print(v any) error {
	return writeJSON(a.out, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// withApp runs fn with a fully wired app.
func withApp(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, a *app) error, opts ...analysis.Option) error {
	a, err := newApp(cmd, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}
