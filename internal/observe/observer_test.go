package observe_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/observe"
)

// next runs the observer's wait command and returns its message, failing
// the test if nothing arrives in time.
func next(t *testing.T, o *observe.Observer) tea.Msg {
	t.Helper()

	ch := make(chan tea.Msg, 1)
	go func() { ch <- o.WaitForNext()() }()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for observer reading")
		return nil
	}
}

type countingLocator struct {
	calls atomic.Int32
	fail  bool
}

func (l *countingLocator) Locate(context.Context) (*model.Location, error) {
	n := l.calls.Add(1)
	if l.fail {
		return nil, errors.New("no fix")
	}
	return &model.Location{Lat: float64(n), Lng: float64(n)}, nil
}

func TestLocationPolledImmediatelyAndOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loc := &countingLocator{}
	o := observe.New(observe.Config{
		Locator:          loc,
		LocationInterval: time.Minute,
		Clock:            clock,
	})
	o.Start()
	t.Cleanup(o.Stop)

	msg := next(t, o)
	require.IsType(t, observe.LocationMsg{}, msg)
	assert.Equal(t, 1.0, msg.(observe.LocationMsg).Location.Lat)

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Minute)

	msg = next(t, o)
	assert.Equal(t, 2.0, msg.(observe.LocationMsg).Location.Lat)
}

func TestLocationFailureProducesNoReading(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loc := &countingLocator{fail: true}
	o := observe.New(observe.Config{Locator: loc, Clock: clock})
	o.Start()

	require.Eventually(t, func() bool { return loc.calls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	o.Stop()
	assert.Nil(t, o.WaitForNext()(), "nothing was queued")
}

func TestConnectivityReportsChangesOnly(t *testing.T) {
	clock := clockwork.NewFakeClock()
	prober := observe.NewDemoProber(true)
	o := observe.New(observe.Config{
		Prober:        prober,
		InitialOnline: true,
		ProbeInterval: 5 * time.Second,
		Clock:         clock,
	})
	o.Start()
	t.Cleanup(o.Stop)
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))

	// Unchanged reading: nothing sent. Flip and probe via Refresh.
	clock.Advance(5 * time.Second)
	assert.False(t, prober.Toggle())
	o.Refresh()

	msg := next(t, o)
	assert.Equal(t, observe.ConnectivityMsg{Online: false}, msg)

	assert.True(t, prober.Toggle())
	clock.Advance(5 * time.Second)

	msg = next(t, o)
	assert.Equal(t, observe.ConnectivityMsg{Online: true}, msg)
}

func TestStopIsIdempotent(t *testing.T) {
	o := observe.New(observe.Config{
		Prober: observe.NewDemoProber(true),
		Clock:  clockwork.NewFakeClock(),
	})
	o.Start()
	o.Stop()
	o.Stop()

	assert.Nil(t, o.WaitForNext()())
}
