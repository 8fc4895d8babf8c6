package observe

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

// Prober reports whether the network is reachable right now.
type Prober interface {
	Probe(ctx context.Context) bool
}

const defaultProbeTimeout = 5 * time.Second

// HTTPProber treats a successful HEAD request to URL as being online.
type HTTPProber struct {
	URL    string
	client *http.Client
}

// NewHTTPProber creates a prober for url with a fixed request timeout.
func NewHTTPProber(url string) *HTTPProber {
	return &HTTPProber{
		URL:    url,
		client: &http.Client{Timeout: defaultProbeTimeout},
	}
}

// Probe reports true for any 2xx or 3xx answer.
func (p *HTTPProber) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// DemoProber is a switchable connectivity source for demo mode.
type DemoProber struct {
	online atomic.Bool
}

// NewDemoProber creates a demo prober starting in the given state.
func NewDemoProber(online bool) *DemoProber {
	p := &DemoProber{}
	p.online.Store(online)
	return p
}

// Probe returns the simulated state.
func (p *DemoProber) Probe(context.Context) bool {
	return p.online.Load()
}

// Toggle flips the simulated network and returns the new state.
func (p *DemoProber) Toggle() bool {
	for {
		cur := p.online.Load()
		if p.online.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}
