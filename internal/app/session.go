package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/safesignal/internal/notify"
	"github.com/nhle/safesignal/internal/observe"
	"github.com/nhle/safesignal/internal/presence"
	"github.com/nhle/safesignal/internal/ui/dashboard"
)

// initialProbeTimeout bounds the connectivity check made at sign-in.
const initialProbeTimeout = 5 * time.Second

// connectedMsg is sent once the sign-in connectivity check is done.
type connectedMsg struct {
	name   string
	online bool
}

// sessionChangedMsg tells the UI to re-read the controller snapshot of
// the session it came from.
type sessionChangedMsg struct {
	session *session
}

// observedMsg is an observer reading tagged with the session whose
// observer produced it.
type observedMsg struct {
	session *session
	msg     tea.Msg
}

// session is everything that lives between sign-in and sign-out.
type session struct {
	name     string
	ctrl     *presence.Controller
	queue    *notify.Queue
	observer *observe.Observer
	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// stop halts the observers and timers. It may be called more than once.
func (s *session) stop() {
	s.stopOnce.Do(func() {
		s.observer.Stop()
		s.ctrl.Stop()
		s.queue.Wait()
		close(s.done)
	})
}

// checkConnectivity probes the network once before the dashboard is
// shown so the controller starts from a real reading.
func (m Model) checkConnectivity(name string) tea.Cmd {
	prober := m.deps.Prober
	return func() tea.Msg {
		if prober == nil {
			return connectedMsg{name: name, online: true}
		}
		ctx, cancel := context.WithTimeout(context.Background(), initialProbeTimeout)
		defer cancel()
		return connectedMsg{name: name, online: prober.Probe(ctx)}
	}
}

// startSession wires a controller and its observers for name and
// returns the commands that keep them reporting to the UI.
func (m *Model) startSession(name string, online bool) tea.Cmd {
	cfg := m.deps.Config

	queue := notify.NewQueue(m.deps.Clock, m.deps.History, m.logger)
	ctrl := presence.NewController(presence.Config{
		Name:      name,
		Online:    online,
		Flags:     m.deps.Flags,
		Queue:     queue,
		Generator: m.deps.Generator,
		Clock:     m.deps.Clock,
		Logger:    m.logger,
	})

	s := &session{
		name:    name,
		ctrl:    ctrl,
		queue:   queue,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	ctrl.OnChange(func() {
		select {
		case s.changes <- struct{}{}:
		default:
		}
	})

	s.observer = observe.New(observe.Config{
		Prober:           m.deps.Prober,
		Locator:          m.deps.Locator,
		InitialOnline:    online,
		ProbeInterval:    cfg.ConnectivityInterval(),
		LocationInterval: cfg.LocationInterval(),
		LocationTimeout:  cfg.LocationTimeout(),
		Clock:            m.deps.Clock,
		Logger:           m.logger,
	})

	m.session = s
	m.logger.Info("session started", "online", online, "demo", m.deps.Demo != nil)

	ctrl.Start()

	m.dashboard = dashboard.New(dashboard.Options{
		MapsURL:         cfg.Display.MapsURL,
		EmergencyNumber: cfg.Display.EmergencyNumber,
		AIAvailable:     m.deps.Generator != nil && m.deps.Generator.Available(),
		Now:             m.deps.Clock.Now,
	}, m.layout.ContentWidth(), m.layout.ContentHeight())
	snapCmd := m.dashboard.SetSnapshot(ctrl.Snapshot())

	return tea.Batch(
		s.listen(s.observer.Start()),
		waitForChange(s),
		snapCmd,
	)
}

// endSession stops the observers and timers of the current session. The
// durable offline flag is kept.
func (m *Model) endSession() {
	s := m.session
	if s == nil {
		return
	}
	m.session = nil

	s.stop()
	m.logger.Info("session ended")
}

// waitForChange returns a tea.Cmd that waits for the next controller
// change. Re-issue it after handling each sessionChangedMsg.
func waitForChange(s *session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.changes:
			return sessionChangedMsg{session: s}
		case <-s.done:
			return nil
		}
	}
}

// listen tags the reading returned by cmd with s. Re-issue it with the
// observer's WaitForNext after handling each observedMsg.
func (s *session) listen(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}
		return observedMsg{session: s, msg: msg}
	}
}
