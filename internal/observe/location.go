package observe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/nhle/safesignal/internal/model"
)

// ErrLocationUnavailable is returned when a source has no fix.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator yields the current position.
type Locator interface {
	Locate(ctx context.Context) (*model.Location, error)
}

// IPLocator resolves an approximate position from the public IP address
// using an ip-api.com compatible JSON endpoint.
type IPLocator struct {
	URL    string
	client *http.Client
	clock  clockwork.Clock
}

// NewIPLocator creates a locator querying url. The request deadline comes
// from the caller's context.
func NewIPLocator(url string, clock clockwork.Clock) *IPLocator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IPLocator{URL: url, client: &http.Client{}, clock: clock}
}

type ipLocation struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Locate fetches and decodes the current position.
func (l *IPLocator) Locate(ctx context.Context) (*model.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting location: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting location: unexpected status %d", resp.StatusCode)
	}

	var body ipLocation
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding location: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrLocationUnavailable, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return nil, ErrLocationUnavailable
	}

	return model.NewLocation(*body.Lat, *body.Lon, l.clock.Now()), nil
}

// StaticLocator always reports the same configured position.
type StaticLocator struct {
	Lat, Lng float64
	clock    clockwork.Clock
}

// NewStaticLocator creates a locator fixed at lat, lng.
func NewStaticLocator(lat, lng float64, clock clockwork.Clock) *StaticLocator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StaticLocator{Lat: lat, Lng: lng, clock: clock}
}

// Locate returns the configured position stamped with the current time.
func (l *StaticLocator) Locate(context.Context) (*model.Location, error) {
	return model.NewLocation(l.Lat, l.Lng, l.clock.Now()), nil
}

// DemoLocator wanders around a starting point.
type DemoLocator struct {
	mu       sync.Mutex
	lat, lng float64
	step     float64
	rng      *rand.Rand
	clock    clockwork.Clock
}

// NewDemoLocator starts a random walk at lat, lng.
func NewDemoLocator(lat, lng float64, seed uint64, clock clockwork.Clock) *DemoLocator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DemoLocator{
		lat:   lat,
		lng:   lng,
		step:  0.002,
		rng:   rand.New(rand.NewPCG(seed, seed^0x5afe)),
		clock: clock,
	}
}

// Locate moves a small random step and reports the new position.
func (l *DemoLocator) Locate(context.Context) (*model.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lat += (l.rng.Float64()*2 - 1) * l.step
	l.lng += (l.rng.Float64()*2 - 1) * l.step
	return model.NewLocation(l.lat, l.lng, l.clock.Now()), nil
}

// NewLocator builds the locator selected by cfg.
func NewLocator(cfg model.LocationConfig, clock clockwork.Clock) (Locator, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	switch cfg.Source {
	case "", "ip":
		return NewIPLocator(cfg.IPURL, clock), nil
	case "static":
		return NewStaticLocator(cfg.StaticLat, cfg.StaticLng, clock), nil
	case "demo":
		lat, lng := cfg.StaticLat, cfg.StaticLng
		if lat == 0 && lng == 0 {
			lat, lng = 37.7749, -122.4194
		}
		return NewDemoLocator(lat, lng, uint64(clock.Now().UnixNano()), clock), nil
	default:
		return nil, fmt.Errorf("unknown location source %q", cfg.Source)
	}
}
