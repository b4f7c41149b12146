package tui

import (
	"context"
	"fmt"

	"runready/internal/health"
	"runready/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReadinessModel is the readiness screen model
type ReadinessModel struct {
	ctx        context.Context
	aggregator *service.HealthAggregator
	report     *service.ReadinessReport
	loading    bool
}

// NewReadinessModel creates a new readiness model
func NewReadinessModel(ctx context.Context, agg *service.HealthAggregator) ReadinessModel {
	return ReadinessModel{
		ctx:        ctx,
		aggregator: agg,
		loading:    true,
	}
}

// Init initializes the readiness screen
func (m ReadinessModel) Init() tea.Cmd {
	return m.loadData
}

func (m ReadinessModel) loadData() tea.Msg {
	report := m.aggregator.Refresh(m.ctx)
	return readinessDataMsg{report: report}
}

type readinessDataMsg struct {
	report service.ReadinessReport
}

// Update handles messages
func (m ReadinessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readinessDataMsg:
		m.loading = false
		m.report = &msg.report
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.loadData
			}
		}
	}
	return m, nil
}

// View renders the readiness screen
func (m ReadinessModel) View() string {
	if m.loading {
		return "\n  Reading health data..."
	}
	if m.report == nil {
		return "\n  No data available."
	}

	scoreCard := RenderReadinessCard(m.report.Score.Value, m.report.Score.Message)
	metricsCard := renderMetricsCard(m.report.Metrics)
	top := lipgloss.JoinHorizontal(lipgloss.Top, scoreCard, "  ", metricsCard)

	help := statusStyle.Render(fmt.Sprintf("Updated %s. Press 'r' to refresh, '2' to start a run",
		m.report.FetchedAt.Format("15:04")))

	return lipgloss.JoinVertical(lipgloss.Left, top, help)
}

// RenderReadinessCard renders the score with its band message
func RenderReadinessCard(score int, message string) string {
	title := cardTitleStyle.Render("Readiness")
	value := scoreStyle(score).Bold(true).Render(fmt.Sprintf("%d / 100", score))
	bar := renderScoreBar(score, 24)

	content := lipgloss.JoinVertical(lipgloss.Left, value, bar, "", dimStyle.Render(message))
	return cardStyle.Width(32).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderMetricsCard(m health.HealthMetrics) string {
	title := cardTitleStyle.Render("Last Night & Today")

	hr := "no data"
	if m.HasHeartRate() {
		hr = fmt.Sprintf("%.0f bpm", m.HeartRateBPM)
	}

	lines := []string{
		RenderMetric("Sleep", fmt.Sprintf("%.1f h", m.SleepHours)),
		RenderMetric("Steps", fmt.Sprintf("%d", m.StepCount)),
		RenderMetric("Resting heart rate", hr),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(36).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}
