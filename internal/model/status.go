package model

import "fmt"

// Status is the presence reported for a family member.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// StatusFromConnectivity maps a connectivity reading to a Status.
func StatusFromConnectivity(online bool) Status {
	if online {
		return StatusOnline
	}
	return StatusOffline
}

// StatusMode controls whether the current user's status follows
// connectivity or is pinned by hand.
type StatusMode string

const (
	ModeAuto    StatusMode = "auto"
	ModeOnline  StatusMode = "online"
	ModeOffline StatusMode = "offline"
)

// ParseStatusMode converts user input into a StatusMode.
func ParseStatusMode(s string) (StatusMode, error) {
	switch StatusMode(s) {
	case ModeAuto, ModeOnline, ModeOffline:
		return StatusMode(s), nil
	default:
		return "", fmt.Errorf("unknown status mode %q", s)
	}
}

// Label returns the capitalised mode name used in the UI.
func (m StatusMode) Label() string {
	switch m {
	case ModeOnline:
		return "Online"
	case ModeOffline:
		return "Offline"
	default:
		return "Auto"
	}
}
