package app

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/platform"
	"github.com/nhle/safesignal/internal/ui/command"
	settings "github.com/nhle/safesignal/internal/ui/config"
	"github.com/nhle/safesignal/internal/ui/login"
)

// copyResultMsg reports the outcome of a clipboard write.
type copyResultMsg struct {
	err error
}

// openResultMsg reports the outcome of handing a link to the system.
type openResultMsg struct {
	what string
	err  error
}

// runAction performs a dashboard action. Presence changes reach the view
// through the session's change channel.
func (m *Model) runAction(action command.Action) tea.Cmd {
	if action == command.ActionQuit {
		m.endSession()
		return tea.Quit
	}

	s := m.session
	if s == nil {
		return nil
	}

	switch action {
	case command.ActionModeAuto:
		s.ctrl.SetMode(model.ModeAuto)
	case command.ActionModeOnline:
		s.ctrl.SetMode(model.ModeOnline)
	case command.ActionModeOffline:
		s.ctrl.SetMode(model.ModeOffline)

	case command.ActionPing:
		s.ctrl.Ping()

	case command.ActionGenerate:
		if !s.ctrl.Snapshot().CanGenerate() {
			m.statusMsg = "Notify I'm Safe needs a network connection and no message in progress."
			return nil
		}
		s.ctrl.Generate()

	case command.ActionDismiss:
		s.ctrl.DismissNotification()

	case command.ActionCopy:
		return m.copyMessage()

	case command.ActionEmergency:
		number := m.deps.Config.Display.EmergencyNumber
		m.statusMsg = "Calling " + number + "..."
		return m.openLink("emergency call", platform.DialURL(number))

	case command.ActionMap:
		loc := s.ctrl.Snapshot().CurrentUser().LastLocation
		if loc == nil {
			m.statusMsg = "Location not available."
			return nil
		}
		return m.openLink("map", loc.MapURL(m.deps.Config.Display.MapsURL))

	case command.ActionToggleNetwork:
		if m.deps.Demo == nil {
			m.statusMsg = "The network can only be toggled in demo mode (--demo)."
			return nil
		}
		online := m.deps.Demo.Toggle()
		m.logger.Info("demo network toggled", "online", online)
		s.observer.Refresh()

	case command.ActionHistory:
		m.previousView = ViewDashboard
		m.currentView = ViewHistory
		return m.historyView.Load()

	case command.ActionSettings:
		m.previousView = ViewDashboard
		m.currentView = ViewSettings
		m.settings = settings.New(m.deps.Config, m.deps.SaveSettings,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		return m.settings.Init()

	case command.ActionHelp:
		m.previousView = ViewDashboard
		m.currentView = ViewHelp

	case command.ActionLogout:
		name := s.name
		m.endSession()
		m.currentView = ViewLogin
		m.login = login.New(name, m.layout.Width, m.layout.Height)
		return m.login.Init()
	}

	return nil
}

// copyMessage writes the generated message to the system clipboard.
func (m *Model) copyMessage() tea.Cmd {
	text := m.session.ctrl.Snapshot().Message
	if text == "" {
		m.statusMsg = "Nothing to copy yet."
		return nil
	}
	write := m.deps.Clipboard
	return func() tea.Msg {
		return copyResultMsg{err: write(text)}
	}
}

// openLink hands url to the system without waiting on the UI.
func (m *Model) openLink(what, url string) tea.Cmd {
	open := m.deps.Open
	return func() tea.Msg {
		return openResultMsg{what: what, err: open(url)}
	}
}

func (m *Model) handleCopyResult(msg copyResultMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("copying message", "error", msg.err)
		m.statusMsg = fmt.Sprintf("Could not copy: %v", msg.err)
		return nil
	}
	return m.dashboard.MarkCopied()
}

func (m *Model) handleOpenResult(msg openResultMsg) {
	if msg.err != nil {
		m.logger.Warn("opening link", "what", msg.what, "error", msg.err)
		m.statusMsg = fmt.Sprintf("Could not open %s.", msg.what)
	}
}

// applySettings adopts saved settings. The running session keeps its
// generator; the rebuilt one is used from the next sign-in.
func (m *Model) applySettings(msg settings.SavedMsg) tea.Cmd {
	m.deps.Config = msg.Config
	m.logger.Info("settings saved",
		"provider", msg.Config.AI.Provider,
		"key_changed", msg.KeyChanged,
	)
	if m.deps.Reconfigure == nil {
		return nil
	}
	gen, err := m.deps.Reconfigure(msg.Config)
	if err != nil {
		m.logger.Warn("rebuilding message generator", "error", err)
		m.statusMsg = fmt.Sprintf("Message service unavailable: %v", err)
		return nil
	}
	m.deps.Generator = gen
	return nil
}

// defaultClipboard is the system clipboard writer.
func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
