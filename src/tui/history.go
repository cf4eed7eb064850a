// Package tui provides the terminal dashboard for browsing a job's
// recorded build trends.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"trendwatch/src/store"
)

// Column widths
const (
	numberWidth  = 8
	outcomeWidth = 12
	trendWidth   = 16
)

// historyLoadedMsg carries the records once the store lookup finishes.
type historyLoadedMsg struct {
	records []store.BuildRecord
}

type historyErrMsg struct {
	err error
}

// HistoryModel is the Bubble Tea model for the trend history dashboard.
// It displays a job's recorded builds in a split-view layout:
// - Top 1/4: scrollable build list, newest first
// - Bottom 3/4: detail view for the selected build
type HistoryModel struct {
	jobKey string
	loader func(context.Context) ([]store.BuildRecord, error)

	records []store.BuildRecord
	err     error
	loading bool
	spinner spinner.Model

	cursor         int
	listScroll     int
	detailScroll   int
	terminalWidth  int
	terminalHeight int
}

// NewHistoryModel creates a dashboard over a job's stored history. limit
// bounds how many builds are loaded.
func NewHistoryModel(s store.Store, jobKey string, limit int) HistoryModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return HistoryModel{
		jobKey:  jobKey,
		loading: true,
		spinner: sp,
		loader: func(ctx context.Context) ([]store.BuildRecord, error) {
			return s.ListRecent(ctx, jobKey, limit)
		},
	}
}

// Init kicks off the history load alongside the spinner.
func (m HistoryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m HistoryModel) load() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := m.loader(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return historyLoadedMsg{}
		}
		return historyErrMsg{err: err}
	}
	return historyLoadedMsg{records: records}
}

// Update handles messages and updates the model state.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width
		m.terminalHeight = msg.Height

	case historyLoadedMsg:
		m.loading = false
		m.records = msg.records

	case historyErrMsg:
		m.loading = false
		m.err = msg.err

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		listHeight := m.listHeight()

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.listScroll {
					m.listScroll = m.cursor
				}
				m.detailScroll = 0
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
				if m.cursor >= m.listScroll+listHeight {
					m.listScroll = m.cursor - listHeight + 1
				}
				m.detailScroll = 0
			}
		case "home", "g":
			m.cursor = 0
			m.listScroll = 0
			m.detailScroll = 0
		case "end", "G":
			m.cursor = max(0, len(m.records)-1)
			m.listScroll = max(0, len(m.records)-listHeight)
			m.detailScroll = 0

		// Scroll detail view independently
		case "d":
			m.detailScroll++
		case "u":
			if m.detailScroll > 0 {
				m.detailScroll--
			}
		}
	}

	return m, nil
}

func (m HistoryModel) listHeight() int {
	// UI overhead: title (1) + header (1) + divider (1) + help (1)
	available := m.terminalHeight - 4
	if available < 8 {
		available = 8
	}
	return max(2, available/4)
}

// View renders the split-view dashboard.
func (m HistoryModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading history for %s...\n", m.spinner.View(), m.jobKey)
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Failed to load history: %v\n\n  Press q to quit.\n", m.err)
	}
	if len(m.records) == 0 {
		return fmt.Sprintf("\n  No recorded builds for %s.\n\n  Press q to quit.\n", m.jobKey)
	}
	if m.terminalHeight == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	listHeight := m.listHeight()
	detailHeight := max(8, m.terminalHeight-4) - listHeight

	b.WriteString(titleStyle.Render("trendwatch - " + m.jobKey))
	b.WriteString("\n")

	header := fmt.Sprintf("%s %s %s %s",
		TruncateAndPad("Build", numberWidth, false),
		TruncateAndPad("Outcome", outcomeWidth, false),
		TruncateAndPad("Trend", trendWidth, false),
		"Recorded",
	)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	listLines := m.renderList()
	visibleEnd := min(m.listScroll+listHeight, len(listLines))
	for i := m.listScroll; i < visibleEnd; i++ {
		b.WriteString(listLines[i])
		b.WriteString("\n")
	}
	for i := visibleEnd - m.listScroll; i < listHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(m.terminalWidth, 20))))
	b.WriteString("\n")

	detailLines := m.renderDetail()
	detailEnd := min(m.detailScroll+detailHeight, len(detailLines))
	for i := m.detailScroll; i < detailEnd; i++ {
		b.WriteString(detailLines[i])
		b.WriteString("\n")
	}
	for i := detailEnd - m.detailScroll; i < detailHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ navigate • d/u scroll detail • g/G top/bottom • q quit"))

	return b.String()
}

// renderList generates one line per recorded build, newest first.
func (m HistoryModel) renderList() []string {
	lines := make([]string, 0, len(m.records))
	for i, rec := range m.records {
		row := fmt.Sprintf("%s %s %s %s",
			TruncateAndPad(fmt.Sprintf("#%d", rec.Number), numberWidth, false),
			OutcomeLabel(rec.Outcome, outcomeWidth),
			TrendBadge(rec.Trend, trendWidth),
			rec.RecordedAt.Local().Format("2006-01-02 15:04"),
		)
		if i == m.cursor {
			lines = append(lines, cursorStyle.Render("► ")+row)
		} else {
			lines = append(lines, "  "+row)
		}
	}
	return lines
}

// renderDetail generates the detail lines for the selected build.
func (m HistoryModel) renderDetail() []string {
	if m.cursor >= len(m.records) {
		return []string{"No build selected"}
	}
	rec := m.records[m.cursor]

	wrapWidth := max(40, m.terminalWidth-4)

	var lines []string
	lines = append(lines, detailHeaderStyle.Render(
		fmt.Sprintf("%s │ %s │ %s", rec.String(), rec.Outcome, rec.Trend.Description())))
	lines = append(lines, "")
	lines = append(lines, detailDimStyle.Render("Provider: "+rec.Provider))
	lines = append(lines, detailDimStyle.Render("Recorded: "+rec.RecordedAt.Local().Format(time.RFC1123)))
	for _, line := range SplitLines(Wrap("URL: "+rec.URL, wrapWidth)) {
		lines = append(lines, detailDimStyle.Render(line))
	}

	// The trend is relative to the build below it in the list.
	if m.cursor+1 < len(m.records) {
		prev := m.records[m.cursor+1]
		lines = append(lines, "")
		lines = append(lines, detailDimStyle.Render(
			fmt.Sprintf("Previous: #%d (%s)", prev.Number, prev.Outcome)))
	}

	return lines
}

// SplitLines splits text by newlines, returning an empty slice for empty text.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

// Run opens the dashboard and blocks until the user quits.
func Run(s store.Store, jobKey string, limit int) error {
	program := tea.NewProgram(NewHistoryModel(s, jobKey, limit), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
