package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm   Mode = iota // Editing
	ModeSaving             // Writing config and credential
	ModeResult             // Save outcome
)

// SaveFunc persists cfg. A non-empty apiKey replaces the stored key for
// the configured provider.
type SaveFunc func(cfg *model.AppConfig, apiKey string) error

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg is sent after the settings were written.
type SavedMsg struct {
	Config     *model.AppConfig
	KeyChanged bool
}

// saveResultMsg carries the outcome of the save command.
type saveResultMsg struct {
	cfg        *model.AppConfig
	keyChanged bool
	err        error
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode    Mode
	base    *model.AppConfig
	save    SaveFunc
	form    *huh.Form
	spinner spinner.Model
	err     error

	// Form field values (huh binds to these)
	formProvider  string
	formModel     string
	formAPIKey    string
	formEmergency string
	formMapsURL   string
	formLocation  string

	width, height int
}

// New creates the settings view pre-filled from cfg.
func New(cfg *model.AppConfig, save SaveFunc, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		base:          cfg,
		save:          save,
		spinner:       sp,
		formProvider:  cfg.AI.Provider,
		formModel:     cfg.AI.Model,
		formEmergency: cfg.Display.EmergencyNumber,
		formMapsURL:   cfg.Display.MapsURL,
		formLocation:  cfg.Location.Source,
		width:         width,
		height:        height,
	}
	if m.formProvider == "" {
		m.formProvider = "gemini"
	}
	if m.formLocation == "" {
		m.formLocation = "ip"
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Mode returns the current state of the view.
func (m Model) Mode() Mode {
	return m.mode
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveResultMsg:
		m.mode = ModeResult
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		return m, func() tea.Msg {
			return SavedMsg{Config: msg.cfg, KeyChanged: msg.keyChanged}
		}

	case spinner.TickMsg:
		if m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeResult {
			switch msg.String() {
			case "enter", "esc", "q":
				return m, func() tea.Msg { return DoneMsg{} }
			}
			return m, nil
		}
		if m.mode == ModeSaving {
			return m, nil
		}
	}

	if m.mode != ModeForm {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Message service").
				Description("Writes the \"I'm safe\" message").
				Options(
					huh.NewOption("Google Gemini", "gemini"),
					huh.NewOption("Anthropic Claude", "anthropic"),
				).
				Value(&m.formProvider),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&m.formModel),
			huh.NewInput().
				Title("API key").
				Description("Stored in the system keyring. Leave empty to keep the current key").
				EchoMode(huh.EchoModePassword).
				Value(&m.formAPIKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Emergency number").
				Value(&m.formEmergency).
				Validate(validatePhone),
			huh.NewInput().
				Title("Maps URL").
				Description("Locations open as <url>?q=<lat>,<lng>").
				Value(&m.formMapsURL).
				Validate(validateURL),
			huh.NewSelect[string]().
				Title("Location source").
				Options(
					huh.NewOption("IP geolocation", "ip"),
					huh.NewOption("Fixed position from config", "static"),
					huh.NewOption("Simulated walk", "demo"),
				).
				Value(&m.formLocation),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeSaving
		return m, tea.Batch(m.spinner.Tick, m.saveSettings())
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// Config returns the configuration the form currently describes.
func (m Model) Config() *model.AppConfig {
	cfg := *m.base
	cfg.AI.Provider = m.formProvider
	cfg.AI.Model = strings.TrimSpace(m.formModel)
	cfg.Display.EmergencyNumber = strings.TrimSpace(m.formEmergency)
	cfg.Display.MapsURL = strings.TrimSpace(m.formMapsURL)
	cfg.Location.Source = m.formLocation
	return &cfg
}

// saveSettings returns a command that persists the settings.
func (m Model) saveSettings() tea.Cmd {
	cfg := m.Config()
	apiKey := strings.TrimSpace(m.formAPIKey)
	save := m.save
	return func() tea.Msg {
		if save == nil {
			return saveResultMsg{err: fmt.Errorf("settings cannot be saved")}
		}
		err := save(cfg, apiKey)
		return saveResultMsg{cfg: cfg, keyChanged: apiKey != "", err: err}
	}
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	switch m.mode {
	case ModeSaving:
		return style.Render(m.spinner.View() + " Saving settings...")

	case ModeResult:
		var content string
		if m.err != nil {
			errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
			content = errStyle.Render("Could not save settings") + "\n\n" + m.err.Error()
		} else {
			okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
			content = okStyle.Render("Settings saved") + "\n\n" +
				"The message service changes from your next sign-in.\n" +
				"Location source changes apply after a restart."
		}
		return style.Render(content + "\n\n" + theme.HelpStyle.Render("enter/esc back"))

	default:
		title := theme.TitleStyle.MarginBottom(1).Render("Settings")
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
	}
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://maps.example.com)")
	}
	return nil
}

func validatePhone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("number is required")
	}
	for _, c := range s {
		if (c < '0' || c > '9') && !strings.ContainsRune("+-() ", c) {
			return fmt.Errorf("number may only contain digits, spaces and + - ( )")
		}
	}
	return nil
}
