package presence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/presence"
)

func kinds(effects []presence.Effect) []presence.EffectKind {
	out := make([]presence.EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func newState(online bool) presence.State {
	return presence.NewState("Alex", online, time.Unix(1700000000, 0))
}

func TestNewStateRoster(t *testing.T) {
	s := newState(false)

	require.Len(t, s.Users, 4)
	assert.Equal(t, model.ModeAuto, s.Mode)

	current := s.CurrentUser()
	assert.Equal(t, "Alex", current.Name)
	assert.Equal(t, model.StatusOffline, current.Status)
	assert.Nil(t, current.LastLocation)
}

func TestReconcileOffline(t *testing.T) {
	s, effects := presence.ObserveConnectivity(newState(true), false, false)

	assert.Equal(t, model.StatusOffline, s.CurrentUser().Status)
	require.Equal(t,
		[]presence.EffectKind{presence.EffectNotify, presence.EffectSetFlag},
		kinds(effects))
	assert.Equal(t, model.NotificationWarning, effects[0].Type)
	assert.Equal(t, presence.MsgOffline, effects[0].Message)
}

func TestReconcileBackOnlineOrder(t *testing.T) {
	s, effects := presence.ObserveConnectivity(newState(false), true, true)

	assert.Equal(t, model.StatusOnline, s.CurrentUser().Status)
	require.Equal(t, []presence.EffectKind{
		presence.EffectNotify,
		presence.EffectClearFlag,
		presence.EffectGenerate,
	}, kinds(effects))
	assert.Equal(t, model.NotificationSuccess, effects[0].Type)
	assert.Equal(t, presence.MsgBackOnline, effects[0].Message)
}

func TestReconcileOnlineWithoutFlagIsQuiet(t *testing.T) {
	s, effects := presence.ObserveConnectivity(newState(false), true, false)

	assert.Equal(t, model.StatusOnline, s.CurrentUser().Status)
	assert.Empty(t, effects)
}

func TestLocationReplacedNeverCleared(t *testing.T) {
	first := &model.Location{Lat: 1, Lng: 2, Timestamp: 10}
	second := &model.Location{Lat: 3, Lng: 4, Timestamp: 20}

	s, _ := presence.ObserveLocation(newState(true), first, false)
	assert.Equal(t, first, s.CurrentUser().LastLocation)

	s, effects := presence.ObserveLocation(s, nil, false)
	assert.Empty(t, effects)
	assert.Equal(t, first, s.CurrentUser().LastLocation)

	s, _ = presence.ObserveConnectivity(s, false, false)
	assert.Equal(t, first, s.CurrentUser().LastLocation)

	s, _ = presence.ObserveLocation(s, second, true)
	assert.Equal(t, second, s.CurrentUser().LastLocation)
}

func TestManualModeIgnoresReadings(t *testing.T) {
	s, _ := presence.SetMode(newState(true), model.ModeOffline)
	require.Equal(t, model.StatusOffline, s.CurrentUser().Status)

	loc := &model.Location{Lat: 5, Lng: 6}
	s, effects := presence.ObserveConnectivity(s, false, false)
	assert.Empty(t, effects)
	s, effects = presence.ObserveConnectivity(s, true, true)
	assert.Empty(t, effects)
	s, effects = presence.ObserveLocation(s, loc, false)
	assert.Empty(t, effects)

	assert.Equal(t, model.StatusOffline, s.CurrentUser().Status)
	assert.Nil(t, s.CurrentUser().LastLocation)
	assert.True(t, s.Online, "reading is still recorded")
	assert.Equal(t, loc, s.Location)
}

func TestSetModeStatus(t *testing.T) {
	tests := []struct {
		name   string
		online bool
		mode   model.StatusMode
		want   model.Status
	}{
		{"online while disconnected", false, model.ModeOnline, model.StatusOnline},
		{"offline while connected", true, model.ModeOffline, model.StatusOffline},
		{"auto while connected", true, model.ModeAuto, model.StatusOnline},
		{"auto while disconnected", false, model.ModeAuto, model.StatusOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, effects := presence.SetMode(newState(tt.online), tt.mode)

			assert.Equal(t, tt.want, s.CurrentUser().Status)
			assert.Equal(t, tt.mode, s.Mode)
			require.Len(t, effects, 1, "only a notification; flag untouched")
			assert.Equal(t, presence.EffectNotify, effects[0].Kind)
			assert.Equal(t, model.NotificationInfo, effects[0].Type)
			assert.Equal(t, presence.ModeMessage(tt.mode), effects[0].Message)
		})
	}
}

func TestModeMessages(t *testing.T) {
	assert.Equal(t,
		"Your status is manually set to Online. Automatic updates are paused.",
		presence.ModeMessage(model.ModeOnline))
	assert.Equal(t,
		"Your status is manually set to Offline. Automatic updates are paused.",
		presence.ModeMessage(model.ModeOffline))
	assert.Equal(t,
		"Your status is now in Auto mode, reflecting your network connection.",
		presence.ModeMessage(model.ModeAuto))
}

func TestPingMarksOthersOnly(t *testing.T) {
	orig := newState(true)
	s, effects := presence.StartPing(orig)

	for _, u := range s.Users {
		assert.Equal(t, !u.IsCurrentUser, u.IsPinging, u.Name)
	}
	for _, u := range orig.Users {
		assert.False(t, u.IsPinging, "input state is not mutated")
	}
	assert.Equal(t,
		[]presence.EffectKind{presence.EffectNotify, presence.EffectSchedulePingReset},
		kinds(effects))

	s.Users[0].IsPinging = true
	s = presence.EndPing(s)
	for _, u := range s.Users {
		assert.False(t, u.IsPinging, u.Name)
	}
}
