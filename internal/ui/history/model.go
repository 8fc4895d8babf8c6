package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/store"
	"github.com/nhle/safesignal/internal/theme"
)

const historyLimit = 100

// CloseMsg signals the parent to close the history view.
type CloseMsg struct{}

// LoadedMsg carries the records read from the store.
type LoadedMsg struct {
	Records []model.NotificationRecord
	Err     error
}

// Model lists past banners, newest first.
type Model struct {
	history  store.History
	viewport viewport.Model
	records  []model.NotificationRecord
	err      error
	loading  bool
	now      func() time.Time
	width    int
	height   int
}

// New creates the history view. history may be nil when no store is
// configured.
func New(history store.History, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	vp := viewport.New(max(width-4, 0), max(height-4, 0))
	return Model{history: history, viewport: vp, now: now, width: width, height: height}
}

// Load returns a command reading the latest records.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	h := m.history
	return func() tea.Msg {
		if h == nil {
			return LoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		records, err := h.RecentNotifications(ctx, historyLimit)
		return LoadedMsg{Records: records, Err: err}
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles loading results, scrolling and closing.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.records = msg.Records
		m.err = msg.Err
		m.viewport.SetContent(m.renderRecords())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "h", "q":
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) renderRecords() string {
	if m.err != nil {
		return theme.HelpStyle.Render(fmt.Sprintf("Could not load history: %v", m.err))
	}
	if len(m.records) == 0 {
		return theme.HelpStyle.Render("No notifications yet.")
	}

	now := m.now()
	lines := make([]string, 0, len(m.records))
	for _, r := range m.records {
		when := theme.HelpStyle.Render(humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
		lines = append(lines, theme.NotificationStyle(r.Type).Render(r.Message)+"  "+when)
	}
	return strings.Join(lines, "\n")
}

// View renders the list.
func (m Model) View() string {
	title := theme.TitleStyle.MarginBottom(1).Render("Notification History")

	body := m.viewport.View()
	if m.loading {
		body = theme.HelpStyle.Render("Loading...")
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-8, 0)
	m.viewport.Height = max(height-8, 0)
}
