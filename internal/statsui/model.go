// Package statsui provides the Bubble Tea results browser.
package statsui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/stats"
	"github.com/verte-zerg/keydyn/internal/store"
)

const (
	tabOverview = iota
	tabBigrams
	tabWords
	tabSentences
)

const histogramBuckets = 40

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea results browser.
type Model struct {
	store *store.Store
	runID string

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	// tables holds the token tables of the bigram, word and sentence tabs.
	tables [3]table.Model

	width  int
	height int

	runInputMode bool
	runInput     textinput.Model
}

// NewModel constructs a browser for a stored run. An empty runID selects the latest run.
func NewModel(st *store.Store, runID string) *Model {
	m := &Model{
		store: st,
		runID: runID,
		tabs:  []string{"Overview", "Bigrams", "Words", "Sentences"},
	}
	m.overview = viewport.New(0, 0)
	m.runInput = textinput.New()
	m.runInput.Prompt = "Run ID: "
	m.runInput.Placeholder = "latest"
	m.runInput.Cursor.SetMode(cursor.CursorBlink)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.runInputMode {
			return m.updateRunInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.runInputMode = true
			m.runInput.SetValue(m.runID)
			return m, m.runInput.Focus()
		case "g", "home":
			if t := m.activeTable(); t != nil {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t := m.activeTable(); t != nil {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if t := m.activeTable(); t != nil {
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Report returns the loaded report.
func (m *Model) Report() stats.Report {
	return m.report
}

func (m *Model) activeTable() *table.Model {
	if m.activeTab == tabOverview {
		return nil
	}
	return &m.tables[m.activeTab-1]
}

func (m *Model) updateRunInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.runInputMode = false
		m.runInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.runInputMode = false
		m.runInput.Blur()
		m.runID = strings.TrimSpace(m.runInput.Value())
		m.refreshReport()
		m.updateLayout()
		m.renderOverview()
		return m, nil
	}
	var cmd tea.Cmd
	m.runInput, cmd = m.runInput.Update(msg)
	return m, cmd
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.runInputMode {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(maxInt(1, bodyHeight-1))
	}
	m.runInput.Width = maxInt(10, m.width-lipgloss.Width(m.runInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	for i := range m.tables {
		if i == m.activeTab-1 {
			m.tables[i].Focus()
		} else {
			m.tables[i].Blur()
		}
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.runID)
	switch {
	case err != nil && m.runID == "" && errors.Is(err, store.ErrRunNotFound):
		m.errMsg = ""
		m.report = stats.Report{}
	case err != nil:
		m.errMsg = err.Error()
		m.report = stats.Report{}
	default:
		m.errMsg = ""
		m.report = report
	}
	sections := []stats.Section{m.report.Bigrams, m.report.Words, m.report.Sentences}
	titles := []string{"Bigram", "Word", "Sentence"}
	for i := range m.tables {
		focused := m.activeTab == i+1
		m.tables[i] = buildTokenTable(titles[i], sections[i].Aggregates)
		if focused {
			m.tables[i].Focus()
		}
	}
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load run.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	run := m.report.Run
	summary := "Run: none"
	if run.ID != "" {
		summary = fmt.Sprintf("Run: %s  created=%s  bounds=%d-%dms",
			run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.Bounds.MinMs, run.Bounds.MaxMs)
	}
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if t := m.activeTable(); t != nil {
		if len(t.Rows()) == 0 {
			return "No measurements."
		}
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Run: /  Quit: q")
	if m.runInputMode {
		return headerStyle.Render("enter: load run  esc: cancel") + "\n" + m.runInput.View()
	}
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderOverview(report stats.Report, width int) string {
	run := report.Run
	if run.ID == "" {
		return "No runs found. Run: keydyn extract <participants-file>"
	}
	cards := []string{
		metricCard("Participants", fmt.Sprintf("%d/%d", run.Processed, run.Requested)),
		metricCard("Missing", fmt.Sprintf("%d", run.Missing)),
		metricCard("Bigrams", fmt.Sprintf("%d", run.BigramCount)),
		metricCard("Words", fmt.Sprintf("%d", run.WordCount)),
		metricCard("Sentences", fmt.Sprintf("%d", run.SentenceCount)),
		metricCard("Mean bigram", formatMean(report.Bigrams.Summary)),
		metricCard("Mean word", formatMean(report.Words.Summary)),
		metricCard("Mean sentence", formatMean(report.Sentences.Summary)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:5]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[5:]...)
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	lines := []string{grid, ""}
	for _, d := range []struct {
		label   string
		section stats.Section
	}{
		{"Bigram intervals", report.Bigrams},
		{"Word durations", report.Words},
		{"Sentence durations", report.Sentences},
	} {
		if d.section.Summary.Count == 0 {
			continue
		}
		buckets := minInt(histogramBuckets, maxInt(1, width-24))
		lines = append(lines,
			cardTitleStyle.Render(d.label),
			fmt.Sprintf("%6d |%s| %d ms", d.section.Summary.Min,
				stats.Sparkline(stats.Histogram(d.section.Values, buckets)), d.section.Summary.Max),
			fmt.Sprintf("mean %.1f ms  sd %.1f ms  n=%d", d.section.Summary.Mean, d.section.Summary.StdDev, d.section.Summary.Count),
			"",
		)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func formatMean(s stats.Summary) string {
	if s.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f ms", s.Mean)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildTokenTable(title string, aggs []model.TokenAggregate) table.Model {
	tokenWidth := len(title)
	for _, agg := range aggs {
		if w := lipgloss.Width(stats.TokenLabel(agg.Token)); w > tokenWidth {
			tokenWidth = w
		}
	}
	columns := []table.Column{
		{Title: title, Width: minInt(tokenWidth, 60)},
		{Title: "Count", Width: 6},
		{Title: "Mean (ms)", Width: 10},
		{Title: "Min", Width: 6},
		{Title: "Max", Width: 6},
	}
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{
			stats.TokenLabel(agg.Token),
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%.1f", agg.MeanMs()),
			fmt.Sprintf("%d", agg.MinMs),
			fmt.Sprintf("%d", agg.MaxMs),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tokenTableStyles())
	return t
}

func tokenTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
