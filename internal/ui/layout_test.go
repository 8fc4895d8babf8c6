package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestRenderWithFrameFillsHeight(t *testing.T) {
	l := NewLayout(40, 10)

	out := l.RenderWithFrame(
		l.RenderHeader("SafeSignal", "online"),
		"body",
		l.RenderStatusBar("q quit"),
	)

	assert.Equal(t, 10, lipgloss.Height(out))
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "SafeSignal")
	assert.Contains(t, lines[len(lines)-1], "q quit")
}
