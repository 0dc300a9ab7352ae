// Command candleterm is a terminal dashboard for financial tickers: a
// watchlist of symbols with live quotes, and a per-ticker candlestick
// chart rendered entirely in character cells.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"candleterm/internal/chart"
	"candleterm/internal/config"
	"candleterm/internal/dashboard"
	"candleterm/internal/ohlc"
	"candleterm/internal/quote"
	"candleterm/internal/store"
	"candleterm/internal/util"
)

// Styles.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	symbolStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	colHdrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	highlightBG  = lipgloss.Color("236")
	bullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// toneStyles maps the chart engine's color categories onto terminal styles.
var toneStyles = map[chart.Tone]lipgloss.Style{
	chart.ToneBullish: bullishStyle,
	chart.ToneBearish: bearishStyle,
	chart.ToneAxis:    axisStyle,
	chart.ToneLabel:   labelStyle,
}

// UI modes.
const (
	modeList = iota
	modeChart
	modeAddSymbol
)

// Messages.
type tickMsg time.Time

type watchlistMsg struct {
	entries []store.WatchlistEntry
	err     error
}

type dailyMsg struct {
	symbol string
	series *ohlc.Series
	err    error
}

type chartMsg struct {
	symbol    string
	interval  ohlc.Interval
	series    *ohlc.Series
	fromCache bool
	err       error
}

type chartKey struct {
	symbol   string
	interval ohlc.Interval
}

// Model.
type model struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider quote.Provider
	wl       *store.SQLiteStore
	cache    *store.ParquetStore

	mode          int
	width, height int
	ready         bool
	viewport      viewport.Model
	quitConfirm   bool
	statusErr     string

	// List mode.
	entries  []store.WatchlistEntry
	names    map[string]string
	daily    map[string]*ohlc.Series
	selected int
	sortMode int
	rows     []dashboard.Row

	// Chart mode.
	chartSymbol   string
	chartInterval ohlc.Interval
	charts        map[chartKey]*ohlc.Series
	chartLoading  bool

	// Add-symbol prompt.
	input string
}

func initialModel(cfg *config.Config, logger *slog.Logger, p quote.Provider, wl *store.SQLiteStore, cache *store.ParquetStore) model {
	return model{
		cfg:           cfg,
		logger:        logger,
		provider:      p,
		wl:            wl,
		cache:         cache,
		names:         make(map[string]string),
		daily:         make(map[string]*ohlc.Series),
		charts:        make(map[chartKey]*ohlc.Series),
		chartInterval: ohlc.Interval30Min,
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m model) tickCmd() tea.Cmd {
	refresh := time.Duration(m.cfg.Quotes.RefreshSeconds) * time.Second
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) loadWatchlistCmd() tea.Cmd {
	wl := m.wl
	seed := m.cfg.Watchlist.Symbols
	return func() tea.Msg {
		ctx := context.Background()
		if err := wl.Seed(ctx, seed); err != nil {
			return watchlistMsg{err: err}
		}
		entries, err := wl.List(ctx)
		return watchlistMsg{entries: entries, err: err}
	}
}

func (m model) fetchDailyCmd(symbol string) tea.Cmd {
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		series, err := p.Bars(ctx, symbol, ohlc.Interval1Day)
		return dailyMsg{symbol: symbol, series: series, err: err}
	}
}

func (m model) fetchDailyAllCmd() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.entries))
	for _, e := range m.entries {
		cmds = append(cmds, m.fetchDailyCmd(e.Symbol))
	}
	return tea.Batch(cmds...)
}

// openChartCmds serves the chart from the parquet cache immediately and
// kicks off a live fetch that replaces it.
func (m model) openChartCmds(symbol string, iv ohlc.Interval) tea.Cmd {
	cache := m.cache
	p := m.provider
	logger := m.logger

	cached := func() tea.Msg {
		series, err := cache.ReadSeries(symbol, iv)
		if err != nil || series == nil {
			// Cache misses are silent; the live fetch is on its way.
			return nil
		}
		return chartMsg{symbol: symbol, interval: iv, series: series, fromCache: true}
	}
	live := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		series, err := p.Bars(ctx, symbol, iv)
		if err != nil {
			return chartMsg{symbol: symbol, interval: iv, err: err}
		}
		if err := cache.WriteSeries(series); err != nil {
			logger.Warn("caching bars", "symbol", symbol, "error", err)
		}
		return chartMsg{symbol: symbol, interval: iv, series: series}
	}
	return tea.Batch(cached, live)
}

// ---------------------------------------------------------------------------
// tea.Model
// ---------------------------------------------------------------------------

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadWatchlistCmd(), m.tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2 // header + footer
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshContent()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd(), m.fetchDailyAllCmd()}
		if m.mode == modeChart {
			cmds = append(cmds, m.openChartCmds(m.chartSymbol, m.chartInterval))
		}
		return m, tea.Batch(cmds...)

	case watchlistMsg:
		if msg.err != nil {
			m.statusErr = msg.err.Error()
			m.logger.Error("loading watchlist", "error", msg.err)
			return m, nil
		}
		m.entries = msg.entries
		for _, e := range m.entries {
			if e.Name != "" {
				m.names[e.Symbol] = e.Name
			}
		}
		m.refreshContent()
		return m, m.fetchDailyAllCmd()

	case dailyMsg:
		if msg.err != nil {
			m.logger.Warn("fetching quote", "symbol", msg.symbol, "error", msg.err)
			return m, nil
		}
		m.daily[msg.symbol] = msg.series
		m.refreshContent()
		return m, nil

	case chartMsg:
		if msg.err != nil {
			m.chartLoading = false
			m.statusErr = fmt.Sprintf("%s: %v", msg.symbol, msg.err)
			m.logger.Error("fetching chart", "symbol", msg.symbol, "error", msg.err)
			m.refreshContent()
			return m, nil
		}
		key := chartKey{msg.symbol, msg.interval}
		if msg.fromCache && m.charts[key] != nil {
			// A live series already landed; don't regress to the cache.
			return m, nil
		}
		m.charts[key] = msg.series
		if !msg.fromCache {
			m.chartLoading = false
		}
		m.refreshContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Two-step quit: the first q arms the confirmation, any other key
	// disarms it.
	if m.quitConfirm {
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		m.quitConfirm = false
		m.refreshContent()
		return m, nil
	}
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeAddSymbol:
		return m.handleAddKey(msg)
	case modeChart:
		return m.handleChartKey(key)
	default:
		return m.handleListKey(key)
	}
}

func (m model) handleListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.quitConfirm = true
		m.refreshContent()
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.refreshContent()
		return m, nil
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
		m.refreshContent()
		return m, nil
	case "s":
		m.sortMode = (m.sortMode + 1) % dashboard.SortModeCount
		m.refreshContent()
		return m, nil
	case "r":
		return m, m.fetchDailyAllCmd()
	case "a":
		m.mode = modeAddSymbol
		m.input = ""
		m.refreshContent()
		return m, nil
	case "d":
		if sym := m.selectedSymbol(); sym != "" {
			wl := m.wl
			delete(m.daily, sym)
			if m.selected >= len(m.rows)-1 && m.selected > 0 {
				m.selected--
			}
			return m, func() tea.Msg {
				ctx := context.Background()
				if err := wl.Remove(ctx, sym); err != nil {
					return watchlistMsg{err: err}
				}
				entries, err := wl.List(ctx)
				return watchlistMsg{entries: entries, err: err}
			}
		}
		return m, nil
	case "enter":
		if sym := m.selectedSymbol(); sym != "" {
			m.mode = modeChart
			m.chartSymbol = sym
			m.chartLoading = m.charts[chartKey{sym, m.chartInterval}] == nil
			m.statusErr = ""
			m.refreshContent()
			m.viewport.GotoTop()
			return m, m.openChartCmds(sym, m.chartInterval)
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleChartKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.quitConfirm = true
		m.refreshContent()
		return m, nil
	case "esc", "backspace":
		m.mode = modeList
		m.statusErr = ""
		m.refreshContent()
		return m, nil
	case "h", "left":
		m.chartInterval = m.chartInterval.Previous()
	case "l", "right":
		m.chartInterval = m.chartInterval.Next()
	case "r":
		// fall through to refetch below
	default:
		return m, nil
	}

	m.chartLoading = m.charts[chartKey{m.chartSymbol, m.chartInterval}] == nil
	m.refreshContent()
	return m, m.openChartCmds(m.chartSymbol, m.chartInterval)
}

func (m model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input = ""
		m.refreshContent()
		return m, nil
	case "enter":
		sym := strings.ToUpper(strings.TrimSpace(m.input))
		m.mode = modeList
		m.input = ""
		if sym == "" {
			m.refreshContent()
			return m, nil
		}
		wl := m.wl
		addCmd := func() tea.Msg {
			ctx := context.Background()
			if err := wl.Add(ctx, sym, ""); err != nil {
				return watchlistMsg{err: err}
			}
			entries, err := wl.List(ctx)
			return watchlistMsg{entries: entries, err: err}
		}
		m.refreshContent()
		return m, tea.Batch(addCmd, m.fetchDailyCmd(sym))
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		m.refreshContent()
		return m, nil
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
			m.refreshContent()
		}
		return m, nil
	}
}

func (m *model) selectedSymbol() string {
	if m.selected >= 0 && m.selected < len(m.rows) {
		return m.rows[m.selected].Symbol
	}
	return ""
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func (m *model) refreshContent() {
	if !m.ready {
		return
	}
	if m.mode == modeChart {
		m.viewport.SetContent(m.renderChart())
	} else {
		m.viewport.SetContent(m.renderList())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var headerText string
	switch {
	case m.quitConfirm:
		headerText = " press q again to quit, any other key to cancel "
	case m.mode == modeChart:
		headerText = fmt.Sprintf(" %s  %s (%s) ",
			m.chartSymbol, m.chartInterval.Label(), m.chartInterval.DefaultTimeframe().Label())
		if m.chartLoading {
			headerText += " loading... "
		}
	case m.mode == modeAddSymbol:
		headerText = fmt.Sprintf(" add symbol: %s_ ", m.input)
	default:
		headerText = fmt.Sprintf(" candleterm  %d symbols    sort: %s ",
			len(m.rows), dashboard.SortModeLabel(m.sortMode))
	}
	headerBar := headerStyle.Render(dashboard.PadOrTrunc(headerText, m.width))

	var footerLeft string
	switch m.mode {
	case modeChart:
		footerLeft = " esc back  h/l interval  r refresh  q quit"
	case modeAddSymbol:
		footerLeft = " enter confirm  esc cancel"
	default:
		footerLeft = " q quit  enter chart  a add  d remove  s sort  r refresh  up/dn select"
	}
	if m.statusErr != "" {
		errBar := errStyle.Render(dashboard.PadOrTrunc(" "+m.statusErr, m.width))
		return headerBar + "\n" + m.viewport.View() + "\n" + errBar
	}
	footerBar := footerStyle.Render(dashboard.PadOrTrunc(footerLeft, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m *model) renderList() string {
	symbols := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		symbols = append(symbols, e.Symbol)
	}
	m.rows = dashboard.BuildRows(symbols, m.names, m.daily, m.sortMode)
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}

	var b strings.Builder
	b.WriteString(colHdrStyle.Render(fmt.Sprintf("  %-10s %12s %12s %10s", "Symbol", "Price", "Change", "Volume")))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  (watchlist is empty, press a to add a symbol)"))
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range m.rows {
		hl := i == m.selected
		symStyle := symbolStyle
		if hl {
			symStyle = symStyle.Background(highlightBG)
		}

		priceText, changeText, volText := "-", "-", "-"
		changeStyle := dimStyle
		if row.HasData {
			priceText = dashboard.FormatPrice(row.Price)
			changeText = dashboard.FormatChange(row.ChangePct)
			volText = dashboard.FormatVolume(row.Volume)
			if row.ChangePct >= 0 {
				changeStyle = gainStyle
			} else {
				changeStyle = lossStyle
			}
		}

		line := fmt.Sprintf("  %s %s %s %s",
			symStyle.Render(dashboard.PadOrTrunc(row.Symbol, 10)),
			priceStyle.Render(fmt.Sprintf("%12s", priceText)),
			changeStyle.Render(fmt.Sprintf("%12s", changeText)),
			dimStyle.Render(fmt.Sprintf("%10s", volText)),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderChart() string {
	if m.width < chart.MinTerminalWidth {
		return warnStyle.Render(fmt.Sprintf(
			"\n  terminal too narrow for the chart (need %d columns)\n\n  esc to go back",
			chart.MinTerminalWidth))
	}

	series := m.charts[chartKey{m.chartSymbol, m.chartInterval}]
	if series == nil || series.Empty() {
		if m.chartLoading {
			return dimStyle.Render("\n  loading " + m.chartSymbol + "...")
		}
		return dimStyle.Render("\n  no data for " + m.chartSymbol)
	}

	var b strings.Builder
	b.WriteString(m.chartHeader(series))
	b.WriteString("\n")

	grid := chart.NewRenderer(series.Bars, series.Interval, m.width, m.viewport.Height-2).Render()
	b.WriteString(renderGrid(grid))
	return b.String()
}

// chartHeader summarizes the series above the chart body.
func (m *model) chartHeader(series *ohlc.Series) string {
	last, _ := series.Last()
	parts := []string{
		"  " + symbolStyle.Render(series.Symbol),
		priceStyle.Render(dashboard.FormatPrice(last.Close)),
	}
	if pct, ok := series.DailyChangePercent(); ok {
		style := gainStyle
		if pct < 0 {
			style = lossStyle
		}
		parts = append(parts, style.Render(dashboard.FormatChange(pct)))
	}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("%s candles", dashboard.FormatInt(series.Len()))))
	return strings.Join(parts, "  ")
}

// renderGrid converts the chart engine's cell grid into styled terminal
// lines, batching runs of equal tone to keep the escape-sequence overhead
// down.
func renderGrid(grid [][]chart.Cell) string {
	var b strings.Builder
	for _, row := range grid {
		var run strings.Builder
		runTone := chart.ToneNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style, ok := toneStyles[runTone]; ok {
				b.WriteString(style.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, cell := range row {
			if cell.Tone != runTone {
				flush()
				runTone = cell.Tone
			}
			run.WriteRune(cell.Rune)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func main() {
	cfgPath := filepath.Join(os.Getenv("HOME"), ".candleterm", "config.yaml")
	if p := os.Getenv("CANDLETERM_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file; stdout belongs to the TUI.
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.Path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating log directory: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(cfg.Logging.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	var provider quote.Provider
	switch cfg.Quotes.Provider {
	case "alpaca":
		if cfg.Quotes.Alpaca.APIKey == "" || cfg.Quotes.Alpaca.APISecret == "" {
			fmt.Fprintln(os.Stderr, "alpaca provider requires APCA_API_KEY_ID and APCA_API_SECRET_KEY")
			os.Exit(1)
		}
		provider = quote.NewAlpacaProvider(cfg.Quotes.Alpaca.APIKey, cfg.Quotes.Alpaca.APISecret, cfg.Quotes.Alpaca.DataURL, logger)
	default:
		provider = quote.NewYahooProvider(logger)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating data directory: %v\n", err)
		os.Exit(1)
	}
	wl, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening watchlist store: %v\n", err)
		os.Exit(1)
	}
	defer wl.Close()

	cache := store.NewParquetStore(cfg.Storage.DataDir)

	p := tea.NewProgram(
		initialModel(cfg, logger, provider, wl, cache),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
