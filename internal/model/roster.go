package model

import "time"

// MockFamily returns the static family members shown next to the current
// user. Their last-seen times are aged relative to now.
func MockFamily(now time.Time) []User {
	return []User{
		{
			ID:           "user_2",
			Name:         "Jane Doe",
			Status:       StatusOnline,
			LastLocation: NewLocation(34.0522, -118.2437, now.Add(-5*time.Minute)),
		},
		{
			ID:           "user_3",
			Name:         "Sam Smith",
			Status:       StatusOffline,
			LastLocation: NewLocation(40.7128, -74.0060, now.Add(-2*time.Hour)),
		},
		{
			ID:           "user_4",
			Name:         "Emily Jones",
			Status:       StatusOnline,
			LastLocation: NewLocation(41.8781, -87.6298, now.Add(-10*time.Minute)),
		},
	}
}

// NewRoster builds the working set: the current user first, followed by
// the mock family.
func NewRoster(name string, now time.Time) []User {
	return append([]User{NewCurrentUser(name)}, MockFamily(now)...)
}
