package model

import (
	"strconv"
	"time"
)

// DefaultMapsURL is the map provider used for "view on map" links.
const DefaultMapsURL = "https://www.google.com/maps"

// Location is a single position reading. A new reading replaces the
// previous one wholesale; readings are never merged.
type Location struct {
	Lat float64 `json:"lat"`

	Lng float64 `json:"lng"`

	// Timestamp is when the reading was taken, in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewLocation builds a Location stamped with the given time.
func NewLocation(lat, lng float64, at time.Time) *Location {
	return &Location{Lat: lat, Lng: lng, Timestamp: at.UnixMilli()}
}

// Time returns the reading timestamp as a time.Time.
func (l Location) Time() time.Time {
	return time.UnixMilli(l.Timestamp)
}

// MapURL returns a link that shows the location on an external map.
// An empty base falls back to DefaultMapsURL.
func (l Location) MapURL(base string) string {
	if base == "" {
		base = DefaultMapsURL
	}
	return base + "?q=" +
		strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(l.Lng, 'f', -1, 64)
}
