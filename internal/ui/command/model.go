package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/safesignal/internal/theme"
)

// Action is a dashboard operation reachable from the palette.
type Action int

const (
	ActionUnknown Action = iota
	ActionModeAuto
	ActionModeOnline
	ActionModeOffline
	ActionPing
	ActionGenerate
	ActionCopy
	ActionEmergency
	ActionMap
	ActionDismiss
	ActionToggleNetwork
	ActionHistory
	ActionHelp
	ActionSettings
	ActionLogout
	ActionQuit
)

// aliases maps every accepted spelling to its action. The first entry of
// each group is offered as a completion.
var aliases = []struct {
	names  []string
	action Action
}{
	{[]string{"auto", "mode auto"}, ActionModeAuto},
	{[]string{"online", "mode online"}, ActionModeOnline},
	{[]string{"offline", "mode offline"}, ActionModeOffline},
	{[]string{"ping", "safety ping"}, ActionPing},
	{[]string{"safe", "generate", "notify"}, ActionGenerate},
	{[]string{"copy"}, ActionCopy},
	{[]string{"sos", "emergency", "call"}, ActionEmergency},
	{[]string{"map", "where"}, ActionMap},
	{[]string{"dismiss", "close"}, ActionDismiss},
	{[]string{"network", "toggle network"}, ActionToggleNetwork},
	{[]string{"history", "log"}, ActionHistory},
	{[]string{"help"}, ActionHelp},
	{[]string{"settings", "config"}, ActionSettings},
	{[]string{"logout", "sign out"}, ActionLogout},
	{[]string{"quit", "q", "exit"}, ActionQuit},
}

// Parse resolves palette input to an action. Matching ignores case and
// surrounding whitespace.
func Parse(input string) Action {
	input = strings.ToLower(strings.Join(strings.Fields(input), " "))
	for _, a := range aliases {
		for _, name := range a.names {
			if name == input {
				return a.action
			}
		}
	}
	return ActionUnknown
}

// Suggestions lists the primary command names.
func Suggestions() []string {
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, a.names[0])
	}
	return out
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Input  string
	Action Action
}

// CancelMsg is emitted when the palette is closed without a command.
type CancelMsg struct{}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "auto, online, offline, ping, safe, sos..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Suggestions())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, func() tea.Msg {
				return CommandMsg{Input: text, Action: Parse(text)}
			}
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.MarginBottom(1).Render("Command Palette")
	hint := theme.HelpStyle.Render("tab completes, enter runs, esc closes")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", hint)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
