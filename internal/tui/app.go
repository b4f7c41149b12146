package tui

import (
	"context"

	"runready/internal/api"
	"runready/internal/service"
	"runready/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenReadiness Screen = iota
	ScreenRun
	ScreenHistory
	ScreenHelp
)

// Deps are the services the screens talk to
type Deps struct {
	Aggregator *service.HealthAggregator
	Pipeline   *service.RunUploadPipeline
	Client     *api.Client
	Session    session.Options
}

// App is the root Bubble Tea model
type App struct {
	ctx        context.Context
	screen     Screen
	prevScreen Screen

	// Screen models
	readiness ReadinessModel
	run       RunModel
	history   HistoryModel
	help      HelpModel

	deps Deps

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App opened on the given screen
func NewApp(ctx context.Context, deps Deps, start Screen) *App {
	return &App{
		ctx:       ctx,
		screen:    start,
		deps:      deps,
		readiness: NewReadinessModel(ctx, deps.Aggregator),
		run:       NewRunModel(ctx, deps.Session, deps.Pipeline),
		history:   NewHistoryModel(ctx, deps.Client, 0, 0),
		help:      NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	switch a.screen {
	case ScreenRun:
		return a.run.Init()
	case ScreenHistory:
		return a.history.Init()
	default:
		return a.readiness.Init()
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenReadiness
			a.readiness = NewReadinessModel(a.ctx, a.deps.Aggregator)
			return a, a.readiness.Init()
		case "2":
			a.screen = ScreenRun
			return a, nil
		case "3":
			a.screen = ScreenHistory
			a.history = NewHistoryModel(a.ctx, a.deps.Client, a.width, a.height)
			return a, a.history.Init()
		case "?":
			a.prevScreen = a.screen
			a.screen = ScreenHelp
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	// a run keeps going while another screen is shown
	case runTickMsg, runSavedMsg:
		m, cmd := a.run.Update(msg)
		a.run = m.(RunModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenReadiness:
		var m tea.Model
		m, cmd = a.readiness.Update(msg)
		a.readiness = m.(ReadinessModel)
	case ScreenRun:
		var m tea.Model
		m, cmd = a.run.Update(msg)
		a.run = m.(RunModel)
	case ScreenHistory:
		var m tea.Model
		m, cmd = a.history.Update(msg)
		a.history = m.(HistoryModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := titleBarStyle.Render("runready")
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenReadiness:
		content = a.readiness.View()
	case ScreenRun:
		content = a.run.View()
	case ScreenHistory:
		content = a.history.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Readiness", ScreenReadiness},
		{"2", "Run", ScreenRun},
		{"3", "History", ScreenHistory},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if item.screen == ScreenRun && a.run.Active() {
			label += " ●"
		}
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += dimStyle.Render(label)
		}
	}

	nav += "  " + dimStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// ActiveRun returns the run in progress when the app exits, if any
func (a *App) ActiveRun() *session.Session {
	if a.run.Active() {
		return a.run.session
	}
	return nil
}
