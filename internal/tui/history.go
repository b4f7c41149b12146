package tui

import (
	"context"
	"fmt"

	"runready/internal/api"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistoryModel is the run history screen model
type HistoryModel struct {
	ctx      context.Context
	client   *api.Client
	runs     []api.RunHistoryItem
	viewport viewport.Model
	loading  bool
	err      error
	ready    bool
}

// NewHistoryModel creates a new history model
func NewHistoryModel(ctx context.Context, client *api.Client, width, height int) HistoryModel {
	m := HistoryModel{
		ctx:     ctx,
		client:  client,
		loading: true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the history screen
func (m HistoryModel) Init() tea.Cmd {
	return m.loadRuns
}

type historyLoadedMsg struct {
	runs []api.RunHistoryItem
	err  error
}

func (m HistoryModel) loadRuns() tea.Msg {
	runs, err := m.client.ListRuns(m.ctx)
	return historyLoadedMsg{runs: runs, err: err}
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.runs = msg.runs
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.runs != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadRuns
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the history screen
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading run history..."
	}

	if m.err != nil {
		return badStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)) +
			"\n" + statusStyle.Render("  Press 'r' to retry")
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m HistoryModel) renderContent() string {
	if len(m.runs) == 0 {
		return "No runs yet. Press '2' to start one."
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Run History (%d)", len(m.runs)))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, RenderHistoryTable(m.runs)))
}

// RenderHistoryTable renders run summaries as a table
func RenderHistoryTable(runs []api.RunHistoryItem) string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%-16s  %9s  %8s  %7s", "Date", "Distance", "Time", "Avg HR"))

	rows := []string{header}
	for _, r := range runs {
		hr := "-"
		if r.AvgHeartRate != nil {
			hr = fmt.Sprintf("%d", *r.AvgHeartRate)
		}
		date := "-"
		if !r.Date.IsZero() {
			date = r.Date.Local().Format("Jan 02 15:04")
		}
		rows = append(rows, fmt.Sprintf(" %-16s  %6.2f km  %8s  %7s",
			date,
			r.Distance,
			r.Duration,
			hr,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
