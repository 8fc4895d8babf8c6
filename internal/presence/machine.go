// Package presence reconciles connectivity, location and the manual
// status mode into the current user's presence record.
//
// The transition functions in this file are pure: each returns the next
// State together with the Effects the Controller must run once that state
// is committed.
package presence

import (
	"time"

	"github.com/nhle/safesignal/internal/model"
)

// PingWindow is how long family cards show the ping indicator.
const PingWindow = 4000 * time.Millisecond

// Banner texts emitted by the state machine.
const (
	MsgBackOnline = "You're back online! Your status has been updated."
	MsgOffline    = "You're offline. Your last known location will be shared when you reconnect."
	MsgPingSent   = "Safety Ping sent to your family."
	MsgGenFailed  = "Could not generate AI message. Please try again."
)

// ModeMessage returns the banner shown after switching to mode.
func ModeMessage(mode model.StatusMode) string {
	if mode == model.ModeAuto {
		return "Your status is now in Auto mode, reflecting your network connection."
	}
	return "Your status is manually set to " + mode.Label() + ". Automatic updates are paused."
}

// EffectKind identifies a side effect requested by a transition.
type EffectKind int

const (
	// EffectNotify pushes a banner.
	EffectNotify EffectKind = iota
	// EffectSetFlag persists the offline flag.
	EffectSetFlag
	// EffectClearFlag removes the offline flag.
	EffectClearFlag
	// EffectGenerate starts a safety message request.
	EffectGenerate
	// EffectSchedulePingReset (re)starts the ping window timer.
	EffectSchedulePingReset
)

func (k EffectKind) String() string {
	switch k {
	case EffectNotify:
		return "notify"
	case EffectSetFlag:
		return "set-flag"
	case EffectClearFlag:
		return "clear-flag"
	case EffectGenerate:
		return "generate"
	case EffectSchedulePingReset:
		return "schedule-ping-reset"
	default:
		return "unknown"
	}
}

// Effect is a side effect to run after a transition. Message and Type are
// only meaningful for EffectNotify.
type Effect struct {
	Kind    EffectKind
	Message string
	Type    model.NotificationType
}

func notifyEffect(typ model.NotificationType, msg string) Effect {
	return Effect{Kind: EffectNotify, Message: msg, Type: typ}
}

// State is everything the state machine decides on.
type State struct {
	Mode model.StatusMode

	// Online is the latest connectivity reading, recorded in every mode.
	Online bool

	// Location is the latest location reading, recorded in every mode.
	Location *model.Location

	// Users is the roster, current user included.
	Users []model.User
}

// NewState returns the initial state for a freshly signed-in user.
func NewState(name string, online bool, now time.Time) State {
	users := model.NewRoster(name, now)
	for i := range users {
		if users[i].IsCurrentUser {
			users[i].Status = model.StatusFromConnectivity(online)
		}
	}
	return State{Mode: model.ModeAuto, Online: online, Users: users}
}

// CurrentUser returns the roster entry marked as the current user.
func (s State) CurrentUser() model.User {
	for _, u := range s.Users {
		if u.IsCurrentUser {
			return u
		}
	}
	return model.User{}
}

// ObserveConnectivity records a connectivity reading and reconciles.
func ObserveConnectivity(s State, online bool, wasOffline bool) (State, []Effect) {
	s.Online = online
	return Reconcile(s, wasOffline)
}

// ObserveLocation records a location reading and reconciles. A nil
// reading is not an observation and leaves the state untouched.
func ObserveLocation(s State, loc *model.Location, wasOffline bool) (State, []Effect) {
	if loc == nil {
		return s, nil
	}
	s.Location = loc
	return Reconcile(s, wasOffline)
}

// Reconcile applies the auto mode rule to the recorded readings. Outside
// auto mode it does nothing.
func Reconcile(s State, wasOffline bool) (State, []Effect) {
	if s.Mode != model.ModeAuto {
		return s, nil
	}

	s.Users = applyCurrent(s.Users, model.StatusFromConnectivity(s.Online), s.Location)

	if !s.Online {
		return s, []Effect{
			notifyEffect(model.NotificationWarning, MsgOffline),
			{Kind: EffectSetFlag},
		}
	}
	if wasOffline {
		return s, []Effect{
			notifyEffect(model.NotificationSuccess, MsgBackOnline),
			{Kind: EffectClearFlag},
			{Kind: EffectGenerate},
		}
	}
	return s, nil
}

// SetMode switches the status mode. The current user's status is set once
// from the new mode; the offline flag is not consulted.
func SetMode(s State, mode model.StatusMode) (State, []Effect) {
	s.Mode = mode

	var status model.Status
	switch mode {
	case model.ModeOnline:
		status = model.StatusOnline
	case model.ModeOffline:
		status = model.StatusOffline
	default:
		status = model.StatusFromConnectivity(s.Online)
	}

	s.Users = applyCurrent(s.Users, status, s.Location)
	return s, []Effect{notifyEffect(model.NotificationInfo, ModeMessage(mode))}
}

// StartPing marks every other member as pinged.
func StartPing(s State) (State, []Effect) {
	users := model.CloneUsers(s.Users)
	for i := range users {
		if !users[i].IsCurrentUser {
			users[i].IsPinging = true
		}
	}
	s.Users = users
	return s, []Effect{
		notifyEffect(model.NotificationSuccess, MsgPingSent),
		{Kind: EffectSchedulePingReset},
	}
}

// EndPing clears the ping indicator on every member.
func EndPing(s State) State {
	users := model.CloneUsers(s.Users)
	for i := range users {
		users[i].IsPinging = false
	}
	s.Users = users
	return s
}

// applyCurrent returns a copy of users with the current user's status
// set and, when loc is known, its location replaced.
func applyCurrent(users []model.User, status model.Status, loc *model.Location) []model.User {
	out := model.CloneUsers(users)
	for i := range out {
		if !out[i].IsCurrentUser {
			continue
		}
		out[i].Status = status
		if loc != nil {
			l := *loc
			out[i].LastLocation = &l
		}
	}
	return out
}
