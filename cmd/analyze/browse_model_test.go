package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser answers with a fixed price per symbol and fails unknown ones.
type fakeBrowser struct {
	prices map[string]float64
}

func (f fakeBrowser) AnalyzeAsset(_ context.Context, id string) (types.AssetAnalysis, error) {
	price, ok := f.prices[id]
	if !ok {
		return types.AssetAnalysis{}, fmt.Errorf("no bars for %s", id)
	}

	return types.AssetAnalysis{
		AssetID:   id,
		LastPrice: price,
		Changes:   types.PriceChanges{ThirtyMinutes: "+1.25%"},
		KeySignals: types.KeySignals{
			ShortTerm: types.ShortTermSignals{
				RSI:        types.RSISignal{Value: 72.4, Condition: types.ConditionOverbought},
				MACD:       types.MACDSignal{Signal: types.SignalActionBuy, Strength: 0.4},
				Stochastic: types.StochasticSignal{K: 81.5, D: 79, Condition: types.ConditionOverbought},
				Patterns:   []types.Pattern{{Type: types.PatternHammer, Position: 99, Strength: 0.8}},
			},
			MediumTerm: types.MediumTermSignals{Trend: types.TrendBullish},
		},
	}, nil
}

func (f fakeBrowser) Snapshot(_ context.Context, id string, timeframe marketdata.Timeframe, _ int) (analysis.IndicatorSnapshot, error) {
	return analysis.IndicatorSnapshot{
		AssetID:    id,
		Timeframe:  timeframe,
		LastPrice:  f.prices[id],
		Trend:      optional.Some(analysis.TrendReading{ADX: 31.2, Trending: true}),
		Volatility: optional.Some(analysis.VolatilityReading{Level: indicator.VolatilityHigh}),
	}, nil
}

// recordingOpen hands out the browser and counts releases.
type recordingOpen struct {
	mu       sync.Mutex
	browser  Browser
	err      error
	opened   []marketdata.SourceType
	released int
}

func (r *recordingOpen) open(source marketdata.SourceType) (Browser, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.opened = append(r.opened, source)
	if r.err != nil {
		return nil, nil, r.err
	}

	return r.browser, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.released++
	}, nil
}

// runCmd runs cmd, or the first command of a batch.
func runCmd(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		return batch[0]()
	}

	return msg
}

func newTestBrowseModel() (BrowseModel, *recordingOpen) {
	rec := &recordingOpen{browser: fakeBrowser{prices: map[string]float64{"BTCUSDT": 67234.5, "ETHUSDT": 3512.25}}}

	return NewBrowseModel(rec.open, 100), rec
}

func TestNewBrowseModel(t *testing.T) {
	m, _ := newTestBrowseModel()

	assert.Equal(t, StateSourceSelect, m.state)
	assert.NotNil(t, m.results)
	assert.NotNil(t, m.failures)
	assert.NotNil(t, m.prevPrices)
	assert.Empty(t, m.symbols)
	assert.Empty(t, m.timeframe)
	assert.Equal(t, 100, m.limit)
	assert.Len(t, m.sourceList.Items(), len(marketdata.GetSupportedSources()))
}

func TestSourceSelection(t *testing.T) {
	m, rec := newTestBrowseModel()
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Binance"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Enter Symbols"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []marketdata.SourceType{marketdata.SourceBinance}, rec.opened)
}

func TestSourceOpenError(t *testing.T) {
	m, rec := newTestBrowseModel()
	rec.err = fmt.Errorf("polygon api key is required")

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updatedModel := newModel.(BrowseModel)

	assert.Equal(t, StateSourceSelect, updatedModel.state)
	assert.Nil(t, updatedModel.browser)
	assert.Contains(t, updatedModel.View(), "polygon api key is required")
}

func TestSymbolInput(t *testing.T) {
	m, _ := newTestBrowseModel()
	m.state = StateSymbolInput
	m.symbolInput.Focus()

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Enter Symbols"))
	}, teatest.WithDuration(2*time.Second))

	tm.Type("btcusdt,ethusdt")

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("ethusdt"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Timeframe"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)

	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(BrowseModel)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, final.symbols)
}

func TestQTypesIntoSymbolInput(t *testing.T) {
	m, _ := newTestBrowseModel()
	m.state = StateSymbolInput
	m.symbolInput.Focus()

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	updatedModel := newModel.(BrowseModel)

	assert.Equal(t, StateSymbolInput, updatedModel.state)
	assert.Equal(t, "q", updatedModel.symbolInput.Value())
}

func TestSignalDisplay(t *testing.T) {
	m, _ := newTestBrowseModel()

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(BrowseModel)
	m.symbols = []string{"BTCUSDT", "ETHUSDT", "DOGEUSDT"}
	m.state = StateTimeframeSelect

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(140, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Timeframe")) &&
			bytes.Contains(bts, []byte("1m"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Signals - Binance (1m)")) &&
			bytes.Contains(bts, []byte("67234.5000")) &&
			bytes.Contains(bts, []byte("3512.2500")) &&
			bytes.Contains(bts, []byte("no bars for DOGEUSDT"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	require.NoError(t, err)

	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(BrowseModel)
	assert.Len(t, final.results, 2)
	assert.Contains(t, final.failures, "DOGEUSDT")
	assert.Equal(t, 0, final.pending)
	assert.Equal(t, marketdata.TimeframeOneMinute, final.timeframe)
}

func TestSignalRows(t *testing.T) {
	browser := fakeBrowser{prices: map[string]float64{"BTCUSDT": 67234.5}}
	cmd := analyzeSymbol(context.Background(), browser, 3, "BTCUSDT", marketdata.TimeframeOneHour, 100)

	loaded, ok := cmd().(AssetLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 3, loaded.Run)

	failed, ok := analyzeSymbol(context.Background(), browser, 3, "XRPUSDT", marketdata.TimeframeOneHour, 100)().(AssetErrorMsg)
	require.True(t, ok)

	results := map[string]AssetLoadedMsg{"BTCUSDT": loaded}
	failures := map[string]error{"XRPUSDT": failed.Err}

	tbl := UpdateSignalRows(NewSignalTable(), results, failures, map[string]float64{"BTCUSDT": 67000})
	rows := tbl.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, "BTCUSDT", rows[0][0])
	assert.Equal(t, "67234.5000 ▲", rows[0][1])
	assert.Equal(t, "+1.25%", rows[0][2])
	assert.Equal(t, "72.4 overbought", rows[0][3])
	assert.Equal(t, string(types.SignalActionBuy), rows[0][4])
	assert.Equal(t, "81.5", rows[0][5])
	assert.Equal(t, string(types.TrendBullish), rows[0][6])
	assert.Equal(t, "31.2", rows[0][7])
	assert.Equal(t, string(indicator.VolatilityHigh), rows[0][8])
	assert.Equal(t, string(types.PatternHammer), rows[0][9])

	assert.Equal(t, "XRPUSDT", rows[1][0])
	assert.Equal(t, "error", rows[1][1])
	assert.Equal(t, "no bars for XRPUSDT", rows[1][9])
}

func TestStaleResultsAreDropped(t *testing.T) {
	m, _ := newTestBrowseModel()
	m.state = StateSignalDisplay
	m.symbols = []string{"BTCUSDT"}
	m.run = 2

	newModel, _ := m.Update(AssetLoadedMsg{Run: 1, Symbol: "BTCUSDT"})
	updatedModel := newModel.(BrowseModel)

	assert.Empty(t, updatedModel.results)
}

func TestRefreshKeepsPreviousPrice(t *testing.T) {
	m, _ := newTestBrowseModel()

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(BrowseModel)
	m.symbols = []string{"BTCUSDT"}
	m.timeframe = marketdata.TimeframeOneHour
	m.state = StateSignalDisplay
	m.results["BTCUSDT"] = AssetLoadedMsg{Symbol: "BTCUSDT", Analysis: types.AssetAnalysis{LastPrice: 66000}}

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = newModel.(BrowseModel)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.pending)

	loaded, ok := runCmd(cmd).(AssetLoadedMsg)
	require.True(t, ok)

	newModel, _ = m.Update(loaded)
	m = newModel.(BrowseModel)

	assert.Equal(t, 66000.0, m.prevPrices["BTCUSDT"])
	assert.Equal(t, 67234.5, m.results["BTCUSDT"].Analysis.LastPrice)
	assert.Equal(t, 0, m.pending)
	assert.Contains(t, m.View(), "▲")
}

func TestStateTransitions(t *testing.T) {
	t.Run("Esc from symbol input releases the source", func(t *testing.T) {
		m, rec := newTestBrowseModel()

		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = newModel.(BrowseModel)
		require.Equal(t, StateSymbolInput, m.state)

		newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		updatedModel := newModel.(BrowseModel)

		assert.Equal(t, StateSourceSelect, updatedModel.state)
		assert.Nil(t, updatedModel.browser)
		assert.Equal(t, 1, rec.released)
	})

	t.Run("Esc from timeframe select goes back to symbol input", func(t *testing.T) {
		m, _ := newTestBrowseModel()
		m.state = StateTimeframeSelect
		m.symbols = []string{"BTCUSDT"}

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Select Timeframe"))
		}, teatest.WithDuration(2*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyEsc})

		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Enter Symbols"))
		}, teatest.WithDuration(2*time.Second))

		err := tm.Quit()
		assert.NoError(t, err)
	})

	t.Run("Esc from signal display clears the results", func(t *testing.T) {
		m, _ := newTestBrowseModel()
		m.state = StateSignalDisplay
		m.symbols = []string{"BTCUSDT", "ETHUSDT"}
		m.timeframe = marketdata.TimeframeOneHour
		m.results = map[string]AssetLoadedMsg{"BTCUSDT": {Symbol: "BTCUSDT"}}
		m.failures = map[string]error{"ETHUSDT": fmt.Errorf("boom")}
		m.prevPrices = map[string]float64{"BTCUSDT": 66500.0}
		run := m.run

		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		updatedModel := newModel.(BrowseModel)

		assert.Equal(t, StateSymbolInput, updatedModel.state)
		assert.Nil(t, updatedModel.symbols)
		assert.Empty(t, updatedModel.timeframe)
		assert.Empty(t, updatedModel.results)
		assert.Empty(t, updatedModel.failures)
		assert.Empty(t, updatedModel.prevPrices)
		assert.Greater(t, updatedModel.run, run)
	})
}

func TestQuitBehavior(t *testing.T) {
	t.Run("ctrl+c quits from any state", func(t *testing.T) {
		m, _ := newTestBrowseModel()
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	})

	t.Run("q quits and releases the source", func(t *testing.T) {
		m, rec := newTestBrowseModel()

		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = newModel.(BrowseModel)
		m.state = StateTimeframeSelect

		newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		updatedModel := newModel.(BrowseModel)

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Nil(t, updatedModel.browser)
		assert.Equal(t, 1, rec.released)
	})
}

func TestPriceChangeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		expected string
	}{
		{
			name:     "first reading has no arrow",
			current:  100.0,
			previous: 0,
			expected: "100.0000",
		},
		{
			name:     "price up",
			current:  100.0,
			previous: 90.0,
			expected: "100.0000 ▲",
		},
		{
			name:     "price down",
			current:  90.0,
			previous: 100.0,
			expected: "90.0000 ▼",
		},
		{
			name:     "same price",
			current:  100.0,
			previous: 100.0,
			expected: "100.0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPriceChange(tt.current, tt.previous))
		})
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestBrowseModel()

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updatedModel := newModel.(BrowseModel)

	assert.Equal(t, 120, updatedModel.width)
	assert.Equal(t, 40, updatedModel.height)
}
