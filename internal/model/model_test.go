package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationMapURL(t *testing.T) {
	loc := NewLocation(34.05223, -118.24368, time.UnixMilli(1000))

	assert.Equal(t, "https://www.google.com/maps?q=34.05223,-118.24368", loc.MapURL(""))
	assert.Equal(t, "https://maps.example.com?q=34.05223,-118.24368", loc.MapURL("https://maps.example.com"))
	assert.Equal(t, int64(1000), loc.Timestamp)
	assert.True(t, loc.Time().Equal(time.UnixMilli(1000)))
}

func TestParseStatusMode(t *testing.T) {
	for _, s := range []string{"auto", "online", "offline"} {
		mode, err := ParseStatusMode(s)
		require.NoError(t, err)
		assert.Equal(t, StatusMode(s), mode)
	}

	_, err := ParseStatusMode("away")
	assert.Error(t, err)
}

func TestStatusFromConnectivity(t *testing.T) {
	assert.Equal(t, StatusOnline, StatusFromConnectivity(true))
	assert.Equal(t, StatusOffline, StatusFromConnectivity(false))
}

func TestNewRoster(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	users := NewRoster("Alex", now)

	require.Len(t, users, 4)
	current := 0
	for _, u := range users {
		if u.IsCurrentUser {
			current++
		}
	}
	assert.Equal(t, 1, current)
	assert.Equal(t, "Alex", users[0].Name)
	assert.Nil(t, users[0].LastLocation)
	assert.Equal(t, StatusOffline, users[2].Status)
	assert.True(t, users[2].LastLocation.Time().Equal(now.Add(-2*time.Hour)))
}

func TestCloneUsersCopiesLocations(t *testing.T) {
	users := NewRoster("Alex", time.Now())
	clone := CloneUsers(users)

	clone[1].LastLocation.Lat = 0
	clone[1].IsPinging = true

	assert.NotZero(t, users[1].LastLocation.Lat)
	assert.False(t, users[1].IsPinging)
}
