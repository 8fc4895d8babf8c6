package login

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/safesignal/internal/theme"
)

// LoginMsg is emitted once a name has been entered.
type LoginMsg struct {
	Name string
}

// QuitMsg is emitted when the form is aborted.
type QuitMsg struct{}

// Model is the sign-in screen.
type Model struct {
	form   *huh.Form
	name   string
	width  int
	height int
}

// New creates the sign-in screen, pre-filled with name.
func New(name string, width, height int) Model {
	m := Model{name: name, width: width, height: height}
	m.form = m.buildForm()
	return m
}

// ValidateName rejects names that are empty after trimming.
func ValidateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("please enter your name")
	}
	return nil
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Description("Shown to your family on the dashboard").
				Placeholder("e.g. Alex").
				Value(&m.name).
				Validate(ValidateName),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and emits LoginMsg when it completes.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		name := strings.TrimSpace(m.name)
		return m, func() tea.Msg { return LoginMsg{Name: name} }
	case huh.StateAborted:
		return m, func() tea.Msg { return QuitMsg{} }
	}

	return m, cmd
}

// View renders the form centred under the product name.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render("SafeSignal")
	tagline := theme.HelpStyle.Render("Let your family know you're safe.")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		tagline,
		"",
		theme.PanelStyle.Render(m.form.View()),
	)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth())
}
