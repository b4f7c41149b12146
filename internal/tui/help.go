package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Readiness"},
		{"2", "Live run"},
		{"3", "Run history"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	}))

	sections = append(sections, m.renderSection("Readiness", []keyHelp{
		{"r", "Refresh health data"},
	}))

	var runKeys []keyHelp
	for _, b := range DefaultRunKeyMap().Bindings() {
		runKeys = append(runKeys, keyHelp{b.Help().Key, b.Help().Desc})
	}
	sections = append(sections, m.renderSection("Live Run", runKeys))

	sections = append(sections, m.renderSection("Run History", []keyHelp{
		{"j / down", "Scroll down"},
		{"k / up", "Scroll up"},
		{"r", "Refresh list"},
	}))

	sections = append(sections, m.renderScoreHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderScoreHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Readiness Score"))
	lines = append(lines, "")

	parts := []struct {
		name string
		desc string
	}{
		{"Sleep (up to 40)", "More than 7h earns 40, more than 6h earns 30."},
		{"Steps (up to 30)", "Under 5,000 earns 30, under 10,000 earns 20. A quiet day means more recovery."},
		{"Resting HR (up to 30)", "Below 65 bpm earns 30, below 75 earns 20. No reading earns nothing."},
	}

	for _, p := range parts {
		lines = append(lines, "  "+keyStyle.Render(p.name))
		lines = append(lines, "  "+dimStyle.Render(p.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
