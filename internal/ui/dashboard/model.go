package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/presence"
	"github.com/nhle/safesignal/internal/theme"
)

// CopiedDuration is how long the "Copied!" badge stays up.
const CopiedDuration = 2000 * time.Millisecond

// copiedExpiredMsg hides the badge set by the copy with the same seq.
type copiedExpiredMsg struct {
	seq int
}

// Options are the display settings of the dashboard.
type Options struct {
	MapsURL         string
	EmergencyNumber string
	AIAvailable     bool
	Now             func() time.Time
}

// Model renders the family dashboard from controller snapshots. It
// holds no presence logic of its own.
type Model struct {
	snap     presence.Snapshot
	opts     Options
	spinner  spinner.Model
	spinning bool

	copied  bool
	copySeq int

	width  int
	height int
}

// New creates a dashboard view.
func New(opts Options, width, height int) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{opts: opts, spinner: sp, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSnapshot replaces the rendered state and starts the spinner when a
// generation begins.
func (m *Model) SetSnapshot(s presence.Snapshot) tea.Cmd {
	m.snap = s
	if s.Message == "" {
		m.copied = false
	}
	if s.Generating && !m.spinning {
		m.spinning = true
		return m.spinner.Tick
	}
	return nil
}

// Snapshot returns the state currently rendered.
func (m Model) Snapshot() presence.Snapshot {
	return m.snap
}

// MarkCopied shows the "Copied!" badge for CopiedDuration.
func (m *Model) MarkCopied() tea.Cmd {
	m.copied = true
	m.copySeq++
	seq := m.copySeq
	return tea.Tick(CopiedDuration, func(time.Time) tea.Msg {
		return copiedExpiredMsg{seq: seq}
	})
}

// Copied reports whether the badge is visible.
func (m Model) Copied() bool {
	return m.copied
}

// Update handles spinner ticks and badge expiry.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.snap.Generating {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case copiedExpiredMsg:
		if msg.seq == m.copySeq {
			m.copied = false
		}
		return m, nil
	}
	return m, nil
}

// View renders the banner, the family grid and the action panel.
func (m Model) View() string {
	sideWidth := 38
	if m.width < 90 {
		sideWidth = m.width
	}
	mainWidth := m.width - sideWidth
	if m.width < 90 {
		mainWidth = m.width
	}

	var sections []string
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}

	family := m.renderFamily(mainWidth)
	side := m.renderSide(sideWidth)

	if m.width < 90 {
		sections = append(sections, side, family)
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, family, side))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderBanner() string {
	n := m.snap.Notification
	if n == nil {
		return ""
	}
	return theme.NotificationStyle(n.Type).
		Width(max(m.width-2, 0)).
		Render(n.Message + theme.HelpStyle.Render("  (x to dismiss)"))
}

func (m Model) renderFamily(width int) string {
	title := theme.TitleStyle.Render("👪 Family Dashboard")

	cols := 1
	if width >= 80 {
		cols = 2
	}
	cardWidth := width / cols
	if cardWidth < 20 {
		cardWidth = 20
	}

	now := m.opts.Now()
	var rows []string
	var row []string
	for _, u := range m.snap.Users {
		row = append(row, RenderCard(u, now, m.opts.MapsURL, cardWidth))
		if len(row) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, rows...)...)
}

func (m Model) renderSide(width int) string {
	panel := theme.PanelStyle
	if width > 4 {
		panel = panel.Width(width - 4)
	}

	modes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.ModeStyle(m.snap.Mode == model.ModeAuto).Render("a Auto"),
		" ",
		theme.ModeStyle(m.snap.Mode == model.ModeOnline).Render("o Online"),
		" ",
		theme.ModeStyle(m.snap.Mode == model.ModeOffline).Render("f Offline"),
	)

	generate := "g Notify I'm Safe"
	switch {
	case m.snap.Generating:
		generate = "g AI Generating..."
	case !m.snap.Online:
		generate = theme.HelpStyle.Render("g Notify I'm Safe (needs network)")
	}

	actions := []string{
		theme.EmergencyStyle.Render("e Emergency Contact (" + m.opts.EmergencyNumber + ")"),
		generate,
		"p Send Safety Ping",
	}

	status := panel.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("Set Your Status"),
		"",
		modes,
		"",
		theme.TitleStyle.Render("Quick Actions"),
		"",
		strings.Join(actions, "\n"),
	))

	msg := m.renderMessage()
	if msg == "" {
		return status
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, panel.Render(msg))
}

func (m Model) renderMessage() string {
	title := theme.TitleStyle.Render("Generated Message")

	if m.snap.Generating {
		return lipgloss.JoinVertical(lipgloss.Left,
			title, "", m.spinner.View()+" Writing a message...")
	}
	if m.snap.Message == "" {
		return ""
	}

	footer := theme.HelpStyle.Render("y to copy")
	if m.copied {
		footer = theme.BadgeStyle.Render("Copied!")
	}
	if !m.opts.AIAvailable {
		footer += theme.HelpStyle.Render("  (no API key, using the standard message)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.snap.Message, "", footer)
}

// HeaderStatus is the right side of the title bar.
func HeaderStatus(s presence.Snapshot) string {
	u := s.CurrentUser()
	label := "Offline"
	if u.IsOnline() {
		label = "Online"
	}
	return fmt.Sprintf("● %s · %s mode · %s", label, s.Mode.Label(), u.Name)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
