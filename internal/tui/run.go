package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"runready/internal/service"
	"runready/internal/session"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	refreshInterval = 250 * time.Millisecond
	chartPoints     = 60
)

// RunModel is the live run screen model
type RunModel struct {
	ctx      context.Context
	opts     session.Options
	pipeline *service.RunUploadPipeline
	keys     RunKeyMap

	session     *session.Session
	state       session.State
	heartRates  []float64
	lastElapsed int

	saving  bool
	record  *service.RunRecord
	saveErr error
	err     error
}

// NewRunModel creates a run screen. Each run gets a fresh session built from opts.
func NewRunModel(ctx context.Context, opts session.Options, pipeline *service.RunUploadPipeline) RunModel {
	return RunModel{
		ctx:      ctx,
		opts:     opts,
		pipeline: pipeline,
		keys:     DefaultRunKeyMap(),
	}
}

type runTickMsg time.Time

type runSavedMsg struct {
	record *service.RunRecord
	err    error
}

// Init initializes the run screen
func (m RunModel) Init() tea.Cmd {
	return nil
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return runTickMsg(t)
	})
}

// Active reports whether a run is in progress
func (m RunModel) Active() bool {
	return m.session != nil && m.state.Status != session.StatusEnded
}

// Update handles messages
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runTickMsg:
		if m.session == nil {
			return m, nil
		}
		m.observe(m.session.Snapshot())
		if m.state.Status == session.StatusEnded {
			return m, nil
		}
		return m, refresh()

	case runSavedMsg:
		m.saving = false
		if msg.record != nil {
			m.record = msg.record
		}
		m.saveErr = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Start):
			if m.Active() || m.saving {
				return m, nil
			}
			return m.start()
		case key.Matches(msg, m.keys.Pause):
			if m.session == nil {
				return m, nil
			}
			if _, err := m.session.TogglePause(); err != nil {
				m.err = err
			}
			m.observe(m.session.Snapshot())
			return m, nil
		case key.Matches(msg, m.keys.End):
			if !m.Active() {
				return m, nil
			}
			return m.end()
		case key.Matches(msg, m.keys.Retry):
			if m.record != nil && m.saveErr != nil && !m.saving {
				m.saving = true
				return m, m.retrySave(m.record)
			}
		}
	}
	return m, nil
}

func (m RunModel) start() (tea.Model, tea.Cmd) {
	m.session = session.New(m.opts)
	m.heartRates = nil
	m.lastElapsed = 0
	m.record = nil
	m.saveErr = nil
	m.err = nil

	if err := m.session.Start(); err != nil {
		m.err = err
		return m, nil
	}
	m.observe(m.session.Snapshot())
	return m, refresh()
}

func (m RunModel) end() (tea.Model, tea.Cmd) {
	summary, err := m.session.End()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.observe(m.session.Snapshot())
	m.saving = true

	ctx := m.ctx
	pipeline := m.pipeline
	return m, func() tea.Msg {
		record, err := pipeline.Complete(ctx, summary)
		return runSavedMsg{record: record, err: err}
	}
}

// retrySave works on a copy so View never reads a record the command is writing
func (m RunModel) retrySave(record *service.RunRecord) tea.Cmd {
	ctx := m.ctx
	pipeline := m.pipeline
	retry := *record
	return func() tea.Msg {
		err := pipeline.Save(ctx, &retry)
		return runSavedMsg{record: &retry, err: err}
	}
}

// observe records a snapshot, adding one chart point per elapsed second
func (m *RunModel) observe(st session.State) {
	m.state = st
	if len(m.heartRates) == 0 {
		m.heartRates = append(m.heartRates, st.HeartRateBPM)
	}
	for m.lastElapsed < st.ElapsedSeconds {
		m.lastElapsed++
		m.heartRates = append(m.heartRates, st.HeartRateBPM)
	}
	if len(m.heartRates) > chartPoints {
		m.heartRates = m.heartRates[len(m.heartRates)-chartPoints:]
	}
}

// View renders the run screen
func (m RunModel) View() string {
	if m.session == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render("Live Run"),
			"  Ready when you are.",
			statusStyle.Render("  Press 's' or Enter to start"),
		)
	}

	var sections []string
	sections = append(sections, m.renderLive())

	if len(m.heartRates) > 2 {
		sections = append(sections, m.renderChart())
	}

	switch {
	case m.state.Status == session.StatusEnded:
		sections = append(sections, m.renderResult())
	case m.state.Status == session.StatusPaused:
		sections = append(sections, warnStyle.Render("  Paused")+statusStyle.Render("  space resume · e end"))
	default:
		sections = append(sections, statusStyle.Render("  space pause · e end"))
	}

	if m.err != nil {
		sections = append(sections, badStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RunModel) renderLive() string {
	title := cardTitleStyle.Render("Live Run")

	values := lipgloss.JoinHorizontal(lipgloss.Top,
		clockStyle.Render(FormatClock(m.state.ElapsedSeconds)),
		clockStyle.Render(fmt.Sprintf("%.2f km", m.state.DistanceKm)),
		heartRateStyle(m.state.HeartRateBPM).Render(fmt.Sprintf("%.0f bpm", m.state.HeartRateBPM)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, values, "", dimStyle.Render(m.state.AlertMessage))
	return cardStyle.Width(50).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m RunModel) renderChart() string {
	title := cardTitleStyle.Render("Heart Rate")

	graph := asciigraph.Plot(m.heartRates,
		asciigraph.Height(8),
		asciigraph.Width(chartPoints),
		asciigraph.Precision(0),
		asciigraph.LowerBound(session.MinHeartRate),
		asciigraph.UpperBound(session.MaxHeartRate),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m RunModel) renderResult() string {
	if m.saving && m.record == nil {
		return statusStyle.Render("  Saving run...")
	}
	if m.record == nil {
		return ""
	}

	var lines []string
	lines = append(lines, RenderMetric("Duration", m.record.DurationText))
	lines = append(lines, RenderMetric("Distance", fmt.Sprintf("%.2f km", m.record.DistanceKm)))
	lines = append(lines, RenderMetric("Steps today", fmt.Sprintf("%d", m.record.StepCount)))
	lines = append(lines, "")
	lines = append(lines, wrap(m.record.Insight, 56))
	lines = append(lines, "")

	switch {
	case m.saving:
		lines = append(lines, statusStyle.Render("Retrying save..."))
	case m.saveErr != nil:
		msg := m.saveErr.Error()
		if errors.Is(m.saveErr, service.ErrSaveFailed) {
			msg = "Run not saved: " + msg
		}
		lines = append(lines, badStyle.Render(msg))
		lines = append(lines, statusStyle.Render("Press 'r' to retry, 's' to start a new run"))
	default:
		lines = append(lines, goodStyle.Render("Run saved!"))
		lines = append(lines, statusStyle.Render("Press 's' to start a new run"))
	}

	title := cardTitleStyle.Render("Run Complete")
	return cardStyle.Width(64).Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

func heartRateStyle(bpm float64) lipgloss.Style {
	switch session.Alert(bpm) {
	case session.AlertHigh:
		return badStyle.Bold(true)
	case session.AlertLow:
		return warnStyle.Bold(true)
	default:
		return goodStyle.Bold(true)
	}
}

// FormatClock formats elapsed seconds as M:SS, or H:MM:SS past an hour
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
