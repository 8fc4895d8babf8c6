package observe_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/observe"
)

func TestHTTPProber(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNoContent)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	p := observe.NewHTTPProber(srv.URL)
	assert.True(t, p.Probe(context.Background()))

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, p.Probe(context.Background()))

	srv.Close()
	assert.False(t, p.Probe(context.Background()))
}

func TestIPLocator(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000000))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","lat":52.52,"lon":13.405,"city":"Berlin"}`)
	}))
	defer srv.Close()

	loc, err := observe.NewIPLocator(srv.URL, clock).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.Location{Lat: 52.52, Lng: 13.405, Timestamp: 1700000000000}, loc)
}

func TestIPLocatorFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ``},
		{"failed lookup", http.StatusOK, `{"status":"fail","message":"private range"}`},
		{"missing coordinates", http.StatusOK, `{"status":"success"}`},
		{"malformed", http.StatusOK, `{"lat":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			loc, err := observe.NewIPLocator(srv.URL, nil).Locate(context.Background())
			assert.Error(t, err)
			assert.Nil(t, loc)
		})
	}
}

func TestStaticAndDemoLocators(t *testing.T) {
	clock := clockwork.NewFakeClock()

	loc, err := observe.NewStaticLocator(1.5, 2.5, clock).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.5, loc.Lat)
	assert.Equal(t, 2.5, loc.Lng)

	demo := observe.NewDemoLocator(10, 20, 42, clock)
	a, _ := demo.Locate(context.Background())
	b, _ := demo.Locate(context.Background())
	assert.NotEqual(t, a, b)
	assert.InDelta(t, 10, b.Lat, 0.01)
	assert.InDelta(t, 20, b.Lng, 0.01)
}

func TestNewLocator(t *testing.T) {
	for source, want := range map[string]interface{}{
		"ip":     &observe.IPLocator{},
		"static": &observe.StaticLocator{},
		"demo":   &observe.DemoLocator{},
	} {
		l, err := observe.NewLocator(model.LocationConfig{Source: source}, nil)
		require.NoError(t, err)
		assert.IsType(t, want, l, source)
	}

	_, err := observe.NewLocator(model.LocationConfig{Source: "gps"}, nil)
	assert.Error(t, err)
}
