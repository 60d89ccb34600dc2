package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
)

// Browser states.
const (
	StateSourceSelect = iota
	StateSymbolInput
	StateTimeframeSelect
	StateSignalDisplay
)

// Browser runs the analyses shown in the signal table.
type Browser interface {
	AnalyzeAsset(ctx context.Context, id string) (types.AssetAnalysis, error)
	Snapshot(ctx context.Context, id string, timeframe marketdata.Timeframe, limit int) (analysis.IndicatorSnapshot, error)
}

// OpenFunc builds a Browser on the chosen source. release frees the source.
type OpenFunc func(source marketdata.SourceType) (browser Browser, release func(), err error)

// BrowseModel is the Bubble Tea model of the browse command.
type BrowseModel struct {
	state         int
	sourceList    list.Model
	symbolInput   textinput.Model
	timeframeList list.Model
	signalTable   table.Model
	results       map[string]AssetLoadedMsg
	failures      map[string]error
	prevPrices    map[string]float64
	symbols       []string
	source        string
	timeframe     marketdata.Timeframe
	limit         int
	pending       int
	run           int
	err           error
	width         int
	height        int

	open    OpenFunc
	browser Browser
	release func()
	cancel  context.CancelFunc
}

// NewBrowseModel creates a BrowseModel that fetches limit bars for the
// snapshot columns.
func NewBrowseModel(open OpenFunc, limit int) BrowseModel {
	return BrowseModel{
		state:         StateSourceSelect,
		sourceList:    NewSourceList(),
		symbolInput:   NewSymbolInput(),
		timeframeList: NewTimeframeList(),
		signalTable:   NewSignalTable(),
		results:       make(map[string]AssetLoadedMsg),
		failures:      make(map[string]error),
		prevPrices:    make(map[string]float64),
		limit:         limit,
		open:          open,
	}
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.shutdown(), tea.Quit
		case "q":
			// q is text while typing symbols
			if m.state != StateSymbolInput {
				return m.shutdown(), tea.Quit
			}
		case "esc":
			return m.handleEsc()
		case "r":
			if m.state == StateSignalDisplay {
				return m.startAnalysis()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sourceList.SetSize(msg.Width, msg.Height-4)
		m.timeframeList.SetSize(msg.Width, msg.Height-4)
		m.signalTable.SetWidth(msg.Width)
		m.signalTable.SetHeight(msg.Height - 6)

		return m, nil

	case AssetLoadedMsg:
		if msg.Run != m.run {
			return m, nil
		}

		if existing, ok := m.results[msg.Symbol]; ok {
			m.prevPrices[msg.Symbol] = existing.Analysis.LastPrice
		}

		m.results[msg.Symbol] = msg
		delete(m.failures, msg.Symbol)
		m.pending--
		m.signalTable = UpdateSignalRows(m.signalTable, m.results, m.failures, m.prevPrices)

		return m, nil

	case AssetErrorMsg:
		if msg.Run != m.run {
			return m, nil
		}

		delete(m.results, msg.Symbol)
		m.failures[msg.Symbol] = msg.Err
		m.pending--
		m.signalTable = UpdateSignalRows(m.signalTable, m.results, m.failures, m.prevPrices)

		return m, nil
	}

	switch m.state {
	case StateSourceSelect:
		return m.updateSourceSelect(msg)
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateTimeframeSelect:
		return m.updateTimeframeSelect(msg)
	case StateSignalDisplay:
		return m.updateSignalDisplay(msg)
	}

	return m, nil
}

func (m BrowseModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateSymbolInput:
		m = m.closeBrowser()
		m.state = StateSourceSelect
	case StateTimeframeSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()
	case StateSignalDisplay:
		m = m.stopAnalysis()
		m.results = make(map[string]AssetLoadedMsg)
		m.failures = make(map[string]error)
		m.prevPrices = make(map[string]float64)
		m.symbols = nil
		m.timeframe = ""
		m.err = nil
		m.signalTable = UpdateSignalRows(m.signalTable, m.results, m.failures, m.prevPrices)
		m.symbolInput.Reset()
		m.symbolInput.Focus()
		m.state = StateSymbolInput

		return m, textinput.Blink
	}

	return m, nil
}

func (m BrowseModel) updateSourceSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.sourceList.SelectedItem().(listItem); ok {
			browser, release, err := m.open(marketdata.SourceType(item.value))
			if err != nil {
				m.err = err

				return m, nil
			}

			m.browser = browser
			m.release = release
			m.source = item.name
			m.err = nil
			m.state = StateSymbolInput
			m.symbolInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.sourceList, cmd = m.sourceList.Update(msg)

	return m, cmd
}

func (m BrowseModel) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		symbols := parseSymbols([]string{m.symbolInput.Value()})
		if len(symbols) > 0 {
			m.symbols = symbols
			m.state = StateTimeframeSelect
			m.symbolInput.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)

	return m, cmd
}

func (m BrowseModel) updateTimeframeSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.timeframeList.SelectedItem().(listItem); ok {
			m.timeframe = marketdata.Timeframe(item.value)
			m.state = StateSignalDisplay

			return m.startAnalysis()
		}
	}

	var cmd tea.Cmd
	m.timeframeList, cmd = m.timeframeList.Update(msg)

	return m, cmd
}

func (m BrowseModel) updateSignalDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.signalTable, cmd = m.signalTable.Update(msg)

	return m, cmd
}

// startAnalysis cancels any run in flight and analyzes every symbol again.
// Results of the previous run stay on screen until replaced.
func (m BrowseModel) startAnalysis() (BrowseModel, tea.Cmd) {
	m = m.stopAnalysis()

	if m.browser == nil {
		m.err = fmt.Errorf("no price source selected")

		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.pending = len(m.symbols)
	m.err = nil

	cmds := make([]tea.Cmd, 0, len(m.symbols))
	for _, symbol := range m.symbols {
		cmds = append(cmds, analyzeSymbol(ctx, m.browser, m.run, symbol, m.timeframe, m.limit))
	}

	return m, tea.Batch(cmds...)
}

// stopAnalysis cancels the run in flight. Its late messages carry the old
// run number and are dropped.
func (m BrowseModel) stopAnalysis() BrowseModel {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	m.run++
	m.pending = 0

	return m
}

func (m BrowseModel) closeBrowser() BrowseModel {
	m = m.stopAnalysis()

	if m.release != nil {
		m.release()
	}

	m.browser = nil
	m.release = nil
	m.source = ""

	return m
}

func (m BrowseModel) shutdown() BrowseModel {
	return m.closeBrowser()
}

// analyzeSymbol returns a command running both analyses of one symbol.
func analyzeSymbol(ctx context.Context, browser Browser, run int, symbol string, timeframe marketdata.Timeframe, limit int) tea.Cmd {
	return func() tea.Msg {
		result, err := browser.AnalyzeAsset(ctx, symbol)
		if err != nil {
			return AssetErrorMsg{Run: run, Symbol: symbol, Err: err}
		}

		snapshot, err := browser.Snapshot(ctx, symbol, timeframe, limit)
		if err != nil {
			return AssetErrorMsg{Run: run, Symbol: symbol, Err: err}
		}

		return AssetLoadedMsg{Run: run, Symbol: symbol, Analysis: result, Snapshot: snapshot}
	}
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	var s strings.Builder

	switch m.state {
	case StateSourceSelect:
		s.WriteString(TitleStyle.Render("Argo Signals - Browse"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(m.sourceList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Enter Symbols"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated symbols (e.g., BTCUSDT,ETHUSDT):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateTimeframeSelect:
		s.WriteString(TitleStyle.Render("Select Timeframe"))
		s.WriteString("\n\n")
		s.WriteString(m.timeframeList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateSignalDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Signals - %s (%s)", m.source, m.timeframe)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if m.pending > 0 {
			s.WriteString(StatusStyle.Render(fmt.Sprintf("%d of %d assets pending...", m.pending, len(m.symbols))))
			s.WriteString("\n\n")
		}

		if len(m.results) == 0 && len(m.failures) == 0 {
			s.WriteString("Waiting for analysis...\n")
		} else {
			s.WriteString(m.signalTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("q: quit | Esc: back | r: refresh | Assets: %s", strings.Join(m.symbols, ", "))))
	}

	return s.String()
}
