package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]Action{
		"auto":           ActionModeAuto,
		"  Mode  Online": ActionModeOnline,
		"OFFLINE":        ActionModeOffline,
		"ping":           ActionPing,
		"notify":         ActionGenerate,
		"sos":            ActionEmergency,
		"sign out":       ActionLogout,
		"q":              ActionQuit,
		"launch rockets": ActionUnknown,
		"":               ActionUnknown,
	}
	for input, want := range tests {
		assert.Equal(t, want, Parse(input), "input %q", input)
	}
}

func TestSuggestionsParse(t *testing.T) {
	for _, s := range Suggestions() {
		assert.NotEqual(t, ActionUnknown, Parse(s), s)
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "ping" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Input: "ping", Action: ActionPing}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestEscCancels(t *testing.T) {
	m := New(80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}
