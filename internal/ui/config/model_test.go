package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/model"
)

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://www.google.com/maps"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("maps"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, validatePhone("911"))
	assert.NoError(t, validatePhone("+1 (555) 010-0000"))
	assert.Error(t, validatePhone(" "))
	assert.Error(t, validatePhone("call me"))
}

func TestNewPrefillsFromConfig(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.AI.Provider = "anthropic"
	cfg.Display.EmergencyNumber = "112"

	m := New(cfg, nil, 80, 24)
	got := m.Config()

	assert.Equal(t, "anthropic", got.AI.Provider)
	assert.Equal(t, "112", got.Display.EmergencyNumber)
	assert.Equal(t, cfg.Storage.Path, got.Storage.Path)
	assert.NotSame(t, cfg, got)
}

func TestSaveSettings(t *testing.T) {
	cfg := model.DefaultAppConfig()

	var saved *model.AppConfig
	var savedKey string
	m := New(cfg, func(c *model.AppConfig, key string) error {
		saved, savedKey = c, key
		return nil
	}, 80, 24)
	m.formEmergency = " 112 "
	m.formAPIKey = "secret"

	msg := m.saveSettings()()
	res, ok := msg.(saveResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.True(t, res.keyChanged)
	assert.Equal(t, "secret", savedKey)
	assert.Equal(t, "112", saved.Display.EmergencyNumber)

	m, cmd := m.Update(res)
	assert.Equal(t, ModeResult, m.Mode())
	require.NotNil(t, cmd)
	savedMsg, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.Equal(t, "112", savedMsg.Config.Display.EmergencyNumber)
}

func TestSaveFailureShowsError(t *testing.T) {
	m := New(model.DefaultAppConfig(), func(*model.AppConfig, string) error {
		return errors.New("disk full")
	}, 80, 24)

	res := m.saveSettings()().(saveResultMsg)
	m, cmd := m.Update(res)

	assert.Nil(t, cmd)
	assert.Equal(t, ModeResult, m.Mode())
	assert.Contains(t, m.View(), "disk full")
}
