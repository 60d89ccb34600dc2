package main

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Multi-timeframe technical analysis of assets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Override the price source (%s)", strings.Join(marketdata.GetSupportedSources(), ", ")),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file loaded before the configuration, ignored when missing",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "asset",
				Usage:  "Analyze a single asset",
				Flags:  []cli.Flag{symbolFlag()},
				Action: assetAction,
			},
			{
				Name:  "batch",
				Usage: "Analyze several assets concurrently",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "symbols",
						Aliases:  []string{"s"},
						Usage:    "Comma separated asset identifiers",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show a progress bar on stderr",
						Value: true,
					},
				},
				Action: batchAction,
			},
			{
				Name:  "snapshot",
				Usage: "Print the last reading of every indicator for one window",
				Flags: []cli.Flag{
					symbolFlag(),
					timeframeFlag("1h"),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of bars to fetch",
						Value:   100,
					},
				},
				Action: snapshotAction,
			},
			{
				Name:  "quote",
				Usage: "Print the current price of an asset",
				Flags: []cli.Flag{
					symbolFlag(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Price kind (last, mid, bid, ask)",
						Value: string(marketdata.PriceKindLast),
					},
				},
				Action: quoteAction,
			},
			{
				Name:   "sources",
				Usage:  "List the supported price sources",
				Action: sourcesAction,
			},
			{
				Name:  "export",
				Usage: "Download bars from the configured source into a parquet file",
				Flags: []cli.Flag{
					symbolFlag(),
					timeframeFlag("1m"),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of bars to fetch",
						Value:   1000,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output parquet path",
						Required: true,
					},
				},
				Action: exportAction,
			},
			{
				Name:  "watch",
				Usage: "Re-run a batch on a schedule and expose Prometheus metrics",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "symbols",
						Aliases:  []string{"s"},
						Usage:    "Comma separated asset identifiers",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron spec with seconds, or a descriptor such as @every 1m",
						Value: "@every 1m",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Listen address of the /metrics endpoint",
						Value: ":9090",
					},
				},
				Action: watchAction,
			},
			{
				Name:  "browse",
				Usage: "Pick a source, assets and a timeframe and browse their signals in a terminal UI",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of bars fetched for the snapshot columns",
						Value:   100,
					},
				},
				Action: browseAction,
			},
			{
				Name:  "schema",
				Usage: "Write JSON schemas of the configuration and the output documents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "./config",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func symbolFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "symbol",
		Aliases:  []string{"s"},
		Usage:    "Asset identifier, for example BTCUSDT or AAPL",
		Required: true,
	}
}

func timeframeFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "timeframe",
		Aliases: []string{"t"},
		Usage:   "Bar timeframe (1m, 5m, 1h, 1d, ...)",
		Value:   value,
	}
}

// parseSymbols splits, trims and de-duplicates identifiers, keeping the
// first occurrence order.
func parseSymbols(values []string) []string {
	seen := map[string]bool{}
	symbols := []string{}

	for _, value := range values {
		for _, s := range strings.Split(value, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}

			seen[s] = true
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// windowsFromConfig maps the configured windows onto the analyzer windows.
func windowsFromConfig(w config.WindowsConfig) analysis.Windows {
	return analysis.Windows{
		Short:  analysis.Window(w.Short),
		Medium: analysis.Window(w.Medium),
		Long:   analysis.Window(w.Long),
	}
}
