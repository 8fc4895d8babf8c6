package app

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/nhle/safesignal/internal/ai"
	"github.com/nhle/safesignal/internal/keys"
	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/observe"
	"github.com/nhle/safesignal/internal/platform"
	"github.com/nhle/safesignal/internal/store"
	"github.com/nhle/safesignal/internal/theme"
	"github.com/nhle/safesignal/internal/ui"
	"github.com/nhle/safesignal/internal/ui/command"
	settings "github.com/nhle/safesignal/internal/ui/config"
	"github.com/nhle/safesignal/internal/ui/dashboard"
	helpview "github.com/nhle/safesignal/internal/ui/help"
	"github.com/nhle/safesignal/internal/ui/history"
	"github.com/nhle/safesignal/internal/ui/login"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewConnecting
	ViewDashboard
	ViewHelp
	ViewCommand
	ViewHistory
	ViewSettings
)

// Deps are the collaborators the UI drives. Config is required; the
// rest fall back to inert or system defaults.
type Deps struct {
	Config    *model.AppConfig
	Flags     store.Flags
	History   store.History
	Generator *ai.Generator
	Prober    observe.Prober
	Locator   observe.Locator

	// Demo is set when the network is simulated.
	Demo *observe.DemoProber

	Clock  clockwork.Clock
	Logger *slog.Logger

	Clipboard func(string) error
	Open      func(string) error

	// SaveSettings persists changes made in the settings view. Reconfigure
	// builds the generator used from the next sign-in.
	SaveSettings settings.SaveFunc
	Reconfigure  func(cfg *model.AppConfig) (*ai.Generator, error)
}

// Model is the root Bubble Tea model that routes between the sign-in
// screen, the dashboard and its overlays.
type Model struct {
	deps   Deps
	logger *slog.Logger

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	login       login.Model
	dashboard   dashboard.Model
	helpView    helpview.Model
	commandView command.Model
	historyView history.Model
	settings    settings.Model

	session   *session
	ready     bool
	statusMsg string

	// autoLogin signs in as this name without showing the form.
	autoLogin string
}

// New creates the root model. When name is non-empty the sign-in form
// is pre-filled with it.
func New(deps Deps, name string) Model {
	if deps.Config == nil {
		deps.Config = model.DefaultAppConfig()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Generator == nil {
		deps.Generator = ai.NewGenerator(nil, deps.Logger)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = defaultClipboard
	}
	if deps.Open == nil {
		deps.Open = platform.OpenURL
	}

	k := keys.DefaultKeyMap()
	helpView := helpview.New(k, 80, 24)
	helpView.SetDemo(deps.Demo != nil)

	return Model{
		deps:        deps,
		logger:      deps.Logger.With("component", "app"),
		currentView: ViewLogin,
		layout:      ui.NewLayout(80, 24),
		keys:        k,
		login:       login.New(name, 80, 24),
		dashboard:   dashboard.New(dashboard.Options{}, 80, 24),
		helpView:    helpView,
		commandView: command.New(80, 24),
		historyView: history.New(deps.History, deps.Clock.Now, 80, 24),
		settings:    settings.New(deps.Config, deps.SaveSettings, 80, 24),
	}
}

// WithAutoLogin returns a copy of m that signs in as name on start.
func (m Model) WithAutoLogin(name string) Model {
	name = strings.TrimSpace(name)
	if login.ValidateName(name) != nil {
		return m
	}
	m.autoLogin = name
	m.currentView = ViewConnecting
	return m
}

// Init starts the sign-in form, or the connectivity check when signing
// in automatically.
func (m Model) Init() tea.Cmd {
	if m.autoLogin != "" {
		return m.checkConnectivity(m.autoLogin)
	}
	return m.login.Init()
}

// Shutdown stops the running session, if any. It is safe to call after
// the program has exited.
func (m *Model) Shutdown() {
	m.endSession()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.login.SetSize(msg.Width, msg.Height)
		m.dashboard.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.historyView.SetSize(w, h)
		m.settings.SetSize(w, h)
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case login.LoginMsg:
		m.currentView = ViewConnecting
		return m, m.checkConnectivity(msg.Name)

	case login.QuitMsg:
		return m, tea.Quit

	case connectedMsg:
		m.currentView = ViewDashboard
		cmd := m.startSession(msg.name, msg.online)
		return m, cmd

	case sessionChangedMsg:
		if msg.session == nil || msg.session != m.session {
			return m, nil
		}
		cmd := m.dashboard.SetSnapshot(m.session.ctrl.Snapshot())
		return m, tea.Batch(cmd, waitForChange(m.session))

	case observedMsg:
		s := m.session
		if s == nil || msg.session != s {
			return m, nil
		}
		switch reading := msg.msg.(type) {
		case observe.ConnectivityMsg:
			s.ctrl.SetConnectivity(reading.Online)
		case observe.LocationMsg:
			s.ctrl.SetLocation(reading.Location)
		}
		return m, s.listen(s.observer.WaitForNext())

	case command.CommandMsg:
		m.currentView = m.previousView
		if msg.Action == command.ActionUnknown {
			m.statusMsg = "Unknown command: " + msg.Input
			return m, nil
		}
		cmd := m.runAction(msg.Action)
		return m, cmd

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case history.CloseMsg:
		m.currentView = ViewDashboard
		return m, nil

	case history.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case settings.DoneMsg:
		m.currentView = ViewDashboard
		return m, nil

	case settings.SavedMsg:
		cmd := m.applySettings(msg)
		return m, cmd

	case copyResultMsg:
		cmd := m.handleCopyResult(msg)
		return m, cmd

	case openResultMsg:
		m.handleOpenResult(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd, settingsCmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		if m.currentView == ViewSettings {
			m.settings, settingsCmd = m.settings.Update(msg)
		}
		return m, tea.Batch(cmd, settingsCmd)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.endSession()
			return m, tea.Quit
		}
		if m.currentView == ViewDashboard {
			return m.handleDashboardKey(msg)
		}
		if m.currentView == ViewHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
			}
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// handleDashboardKey maps key presses on the dashboard to actions.
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	bindings := []struct {
		binding key.Binding
		action  command.Action
	}{
		{m.keys.ModeAuto, command.ActionModeAuto},
		{m.keys.ModeOnline, command.ActionModeOnline},
		{m.keys.ModeOffline, command.ActionModeOffline},
		{m.keys.Ping, command.ActionPing},
		{m.keys.Generate, command.ActionGenerate},
		{m.keys.Copy, command.ActionCopy},
		{m.keys.Emergency, command.ActionEmergency},
		{m.keys.Map, command.ActionMap},
		{m.keys.Dismiss, command.ActionDismiss},
		{m.keys.ToggleNetwork, command.ActionToggleNetwork},
		{m.keys.History, command.ActionHistory},
		{m.keys.Settings, command.ActionSettings},
		{m.keys.Help, command.ActionHelp},
		{m.keys.Logout, command.ActionLogout},
		{m.keys.Quit, command.ActionQuit},
	}

	if key.Matches(msg, m.keys.Command) {
		m.previousView = ViewDashboard
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd
	}

	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			cmd := m.runAction(b.action)
			return m, cmd
		}
	}
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
// Non-key messages also reach the dashboard so its timers keep running
// behind overlays.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd, dashCmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	if _, isKey := msg.(tea.KeyMsg); !isKey && m.session != nil {
		m.dashboard, dashCmd = m.dashboard.Update(msg)
	}
	return m, tea.Batch(cmd, dashCmd)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.currentView == ViewLogin {
		return m.login.View()
	}

	header := m.layout.RenderHeader("SafeSignal", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewConnecting:
		return lipgloss.Place(
			m.layout.ContentWidth(), m.layout.ContentHeight(),
			lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render("Checking your connection..."),
		)
	case ViewDashboard:
		return m.dashboard.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return lipgloss.JoinVertical(lipgloss.Left, m.commandView.View(), m.dashboard.View())
	case ViewHistory:
		return m.historyView.View()
	case ViewSettings:
		return m.settings.View()
	default:
		return ""
	}
}

func (m Model) headerStatus() string {
	if m.session == nil {
		return ""
	}
	snap := m.dashboard.Snapshot()
	return dashboard.HeaderStatus(snap)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewDashboard {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewConnecting:
		return "ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "tab complete | enter execute | esc back"
	case ViewHistory:
		return "j/k scroll | esc back"
	case ViewSettings:
		return "tab next | enter confirm | esc cancel"
	default:
		hints := "a/o/f mode | p ping | g notify | y copy | e emergency | h history | s settings | ? help | q quit"
		if m.deps.Demo != nil {
			hints = "t toggle network | " + hints
		}
		return hints
	}
}
