package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/tests/testutil"
)

func TestLoadShowsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendNotification(context.Background(), model.Notification{
		ID: 1, Message: "You're offline.", Type: model.NotificationWarning, CreatedAt: base,
	}))
	require.NoError(t, s.AppendNotification(context.Background(), model.Notification{
		ID: 2, Message: "You're back online!", Type: model.NotificationSuccess, CreatedAt: base.Add(time.Minute),
	}))

	m := New(s, func() time.Time { return base.Add(time.Hour) }, 100, 30)
	msg := m.Load()()
	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)

	m, _ = m.Update(loaded)
	out := m.View()
	assert.Contains(t, out, "You're back online!")
	assert.Contains(t, out, "59 minutes ago")
	assert.Less(t, strings.Index(out, "back online"), strings.Index(out, "You're offline."))
}

func TestEmptyHistory(t *testing.T) {
	m := New(nil, nil, 80, 20)
	m, _ = m.Update(m.Load()())
	assert.Contains(t, m.View(), "No notifications yet.")
}

func TestEscCloses(t *testing.T) {
	m := New(nil, nil, 80, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
