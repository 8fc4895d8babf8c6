package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the dashboard.
type KeyMap struct {
	// Status mode
	ModeAuto    key.Binding
	ModeOnline  key.Binding
	ModeOffline key.Binding

	// Actions
	Ping      key.Binding
	Generate  key.Binding
	Copy      key.Binding
	Emergency key.Binding
	Map       key.Binding
	Dismiss   key.Binding

	// Demo network switch
	ToggleNetwork key.Binding

	// Views
	History  key.Binding
	Settings key.Binding
	Command  key.Binding
	Help     key.Binding
	Back     key.Binding

	// Session
	Logout key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		ModeAuto: key.NewBinding(
			key.WithKeys("a", "1"),
			key.WithHelp("a", "auto mode"),
		),
		ModeOnline: key.NewBinding(
			key.WithKeys("o", "2"),
			key.WithHelp("o", "set online"),
		),
		ModeOffline: key.NewBinding(
			key.WithKeys("f", "3"),
			key.WithHelp("f", "set offline"),
		),
		Ping: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "safety ping"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "notify I'm safe"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy message"),
		),
		Emergency: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "emergency call"),
		),
		Map: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "open my location"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss banner"),
		),
		ToggleNetwork: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle demo network"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "banner history"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.ModeAuto, k.ModeOnline, k.ModeOffline,
		k.Ping, k.Generate, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ModeAuto, k.ModeOnline, k.ModeOffline, k.ToggleNetwork},
		{k.Ping, k.Generate, k.Copy, k.Emergency, k.Map, k.Dismiss},
		{k.History, k.Settings, k.Command, k.Help, k.Back},
		{k.Logout, k.Quit},
	}
}
