package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
)

// listItem implements list.Item for the source and timeframe lists.
type listItem struct {
	name        string
	value       string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewSourceList lists every registered price source.
func NewSourceList() list.Model {
	names := marketdata.GetSupportedSources()
	items := make([]list.Item, 0, len(names))

	for _, name := range names {
		info, err := marketdata.GetSourceInfo(name)
		if err != nil {
			continue
		}

		items = append(items, listItem{name: info.DisplayName, value: info.Name, description: info.Description})
	}

	return newSelectList("Select Price Source", items)
}

// NewTimeframeList lists the timeframes offered for the snapshot columns.
func NewTimeframeList() list.Model {
	items := []list.Item{
		listItem{name: "1m", value: string(marketdata.TimeframeOneMinute), description: "1 minute bars"},
		listItem{name: "5m", value: string(marketdata.TimeframeFiveMinutes), description: "5 minute bars"},
		listItem{name: "15m", value: string(marketdata.TimeframeFifteenMinutes), description: "15 minute bars"},
		listItem{name: "30m", value: string(marketdata.TimeframeThirtyMinutes), description: "30 minute bars"},
		listItem{name: "1h", value: string(marketdata.TimeframeOneHour), description: "1 hour bars"},
		listItem{name: "4h", value: string(marketdata.TimeframeFourHours), description: "4 hour bars"},
		listItem{name: "12h", value: string(marketdata.TimeframeTwelveHours), description: "12 hour bars"},
		listItem{name: "1d", value: string(marketdata.TimeframeOneDay), description: "1 day bars"},
		listItem{name: "1w", value: string(marketdata.TimeframeOneWeek), description: "1 week bars"},
	}

	return newSelectList("Select Snapshot Timeframe", items)
}

func newSelectList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewSymbolInput creates the text input for asset identifiers.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "BTCUSDT,ETHUSDT,BNBUSDT"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// NewSignalTable creates the table of per asset signals.
func NewSignalTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Price", Width: 16},
		{Title: "30m", Width: 8},
		{Title: "RSI", Width: 16},
		{Title: "MACD", Width: 8},
		{Title: "%K", Width: 6},
		{Title: "Trend", Width: 8},
		{Title: "ADX", Width: 6},
		{Title: "ATR", Width: 7},
		{Title: "Pattern", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateSignalRows rebuilds the rows from the loaded results and failures,
// sorted by symbol.
func UpdateSignalRows(t table.Model, results map[string]AssetLoadedMsg, failures map[string]error, prevPrices map[string]float64) table.Model {
	symbols := make([]string, 0, len(results)+len(failures))
	for symbol := range results {
		symbols = append(symbols, symbol)
	}

	for symbol := range failures {
		if _, ok := results[symbol]; !ok {
			symbols = append(symbols, symbol)
		}
	}

	sort.Strings(symbols)

	rows := make([]table.Row, 0, len(symbols))

	for _, symbol := range symbols {
		result, ok := results[symbol]
		if !ok {
			rows = append(rows, table.Row{symbol, "error", "-", "-", "-", "-", "-", "-", "-", failures[symbol].Error()})

			continue
		}

		rows = append(rows, signalRow(result, prevPrices[symbol]))
	}

	t.SetRows(rows)

	return t
}

func signalRow(result AssetLoadedMsg, prevPrice float64) table.Row {
	short := result.Analysis.KeySignals.ShortTerm
	snapshot := result.Snapshot

	adx := "-"
	if snapshot.Trend.IsSome() {
		adx = fmt.Sprintf("%.1f", snapshot.Trend.Unwrap().ADX)
	}

	atr := "-"
	if snapshot.Volatility.IsSome() {
		atr = string(snapshot.Volatility.Unwrap().Level)
	}

	pattern := "-"
	if len(short.Patterns) > 0 {
		pattern = string(short.Patterns[0].Type)
	}

	return table.Row{
		result.Symbol,
		FormatPriceChange(result.Analysis.LastPrice, prevPrice),
		result.Analysis.Changes.ThirtyMinutes,
		fmt.Sprintf("%.1f %s", short.RSI.Value, short.RSI.Condition),
		string(short.MACD.Signal),
		fmt.Sprintf("%.1f", short.Stochastic.K),
		string(result.Analysis.KeySignals.MediumTerm.Trend),
		adx,
		atr,
		pattern,
	}
}
