// Package observe polls the platform for connectivity and location and
// reports readings to the Bubble Tea runtime.
package observe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/nhle/safesignal/internal/model"
)

// ConnectivityMsg is a tea.Msg sent when connectivity changes.
type ConnectivityMsg struct {
	Online bool
}

// LocationMsg is a tea.Msg carrying a successful location reading.
type LocationMsg struct {
	Location *model.Location
}

const (
	defaultProbeInterval    = 5 * time.Second
	defaultLocationInterval = 60 * time.Second
	defaultLocationTimeout  = 10 * time.Second
)

// Config wires the sources and timings of an Observer.
type Config struct {
	Prober  Prober
	Locator Locator

	// InitialOnline is the connectivity already reported to the
	// presence controller; only changes from it are sent.
	InitialOnline bool

	ProbeInterval    time.Duration
	LocationInterval time.Duration
	LocationTimeout  time.Duration

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// Observer runs the connectivity and location polling loops for one
// dashboard session.
type Observer struct {
	prober  Prober
	locator Locator
	clock   clockwork.Clock
	logger  *slog.Logger

	probeInterval    time.Duration
	locationInterval time.Duration
	locationTimeout  time.Duration

	resultCh  chan tea.Msg
	triggerCh chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu      sync.Mutex
	running bool
	online  bool
}

// New creates an Observer. Either source may be nil to skip its loop.
func New(cfg Config) *Observer {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = defaultProbeInterval
	}
	if cfg.LocationInterval <= 0 {
		cfg.LocationInterval = defaultLocationInterval
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = defaultLocationTimeout
	}

	return &Observer{
		prober:           cfg.Prober,
		locator:          cfg.Locator,
		clock:            cfg.Clock,
		logger:           cfg.Logger.With("component", "observe"),
		probeInterval:    cfg.ProbeInterval,
		locationInterval: cfg.LocationInterval,
		locationTimeout:  cfg.LocationTimeout,
		resultCh:         make(chan tea.Msg, 16),
		triggerCh:        make(chan struct{}, 1),
		online:           cfg.InitialOnline,
	}
}

// Start launches the polling goroutines and returns a command that waits
// for the first reading. Starting twice is a no-op.
func (o *Observer) Start() tea.Cmd {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = true
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.mu.Unlock()

	if o.prober != nil {
		o.wg.Add(1)
		go o.watchConnectivity(ctx)
	}
	if o.locator != nil {
		o.wg.Add(1)
		go o.pollLocation(ctx)
	}

	return o.WaitForNext()
}

// Stop halts the polling loops and waits for them to exit. Readings not
// yet delivered are dropped.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.cancel()
	o.mu.Unlock()

	o.wg.Wait()
	for {
		select {
		case <-o.resultCh:
		default:
			close(o.resultCh)
			return
		}
	}
}

// Refresh asks the connectivity loop to probe right away.
func (o *Observer) Refresh() {
	select {
	case o.triggerCh <- struct{}{}:
	default:
	}
}

// WaitForNext returns a tea.Cmd that waits for the next reading. Call it
// again after handling each reading to keep listening.
func (o *Observer) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-o.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (o *Observer) watchConnectivity(ctx context.Context) {
	defer o.wg.Done()

	ticker := o.clock.NewTicker(o.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			o.probe(ctx)
		case <-o.triggerCh:
			o.probe(ctx)
		}
	}
}

// probe reports the connectivity reading only when it differs from the
// last one sent.
func (o *Observer) probe(ctx context.Context) {
	online := o.prober.Probe(ctx)
	if ctx.Err() != nil {
		return
	}

	o.mu.Lock()
	changed := online != o.online
	o.online = online
	o.mu.Unlock()

	if changed {
		o.logger.Info("connectivity changed", "online", online)
		o.send(ConnectivityMsg{Online: online})
	}
}

func (o *Observer) pollLocation(ctx context.Context) {
	defer o.wg.Done()

	ticker := o.clock.NewTicker(o.locationInterval)
	defer ticker.Stop()

	o.locate(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			o.locate(ctx)
		}
	}
}

// locate performs one bounded attempt. Failures are logged and produce
// no reading.
func (o *Observer) locate(ctx context.Context) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.locationTimeout)
	defer cancel()

	loc, err := o.locator.Locate(attemptCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		o.logger.Warn("location unavailable", "error", err)
		return
	}
	if loc == nil {
		return
	}

	o.send(LocationMsg{Location: loc})
}

// send delivers msg without blocking the polling loop.
func (o *Observer) send(msg tea.Msg) {
	select {
	case o.resultCh <- msg:
	default:
		o.logger.Warn("dropping reading, receiver is behind")
	}
}
