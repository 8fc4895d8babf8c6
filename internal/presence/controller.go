package presence

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/nhle/safesignal/internal/ai"
	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/notify"
	"github.com/nhle/safesignal/internal/store"
)

// Snapshot is a read-only copy of the controller state for rendering.
type Snapshot struct {
	Users      []model.User
	Mode       model.StatusMode
	Online     bool
	Generating bool

	// Message is the latest generated safety message, empty while a
	// request is in flight.
	Message string

	// Notification is the live banner, nil when none is shown.
	Notification *model.Notification
}

// CurrentUser returns the signed-in member.
func (s Snapshot) CurrentUser() model.User {
	for _, u := range s.Users {
		if u.IsCurrentUser {
			return u
		}
	}
	return model.User{}
}

// CanGenerate reports whether a new safety message may be requested.
func (s Snapshot) CanGenerate() bool {
	return s.Online && !s.Generating
}

// Config carries the collaborators of a Controller.
type Config struct {
	// Name is the signed-in user's display name.
	Name string

	// Online is the connectivity reading at sign-in.
	Online bool

	Flags     store.Flags
	Queue     *notify.Queue
	Generator *ai.Generator
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Controller owns the presence state of one signed-in session and runs
// the effects requested by the state machine.
type Controller struct {
	// opMu serialises transitions so their effects run in order; mu
	// guards the fields below and is never held while effects run.
	opMu  sync.Mutex
	mu    sync.Mutex
	state State

	flags     store.Flags
	queue     *notify.Queue
	generator *ai.Generator
	clock     clockwork.Clock
	logger    *slog.Logger

	pingTimer clockwork.Timer
	pingSeq   uint64

	generating bool
	message    string
	genSeq     uint64
	genCancel  context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc

	onChange func()
}

// NewController creates a controller for cfg.Name. Call Start once the
// session is shown to run the initial reconciliation.
func NewController(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Queue == nil {
		cfg.Queue = notify.NewQueue(cfg.Clock, nil, cfg.Logger)
	}
	if cfg.Generator == nil {
		cfg.Generator = ai.NewGenerator(nil, cfg.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:     NewState(cfg.Name, cfg.Online, cfg.Clock.Now()),
		flags:     cfg.Flags,
		queue:     cfg.Queue,
		generator: cfg.Generator,
		clock:     cfg.Clock,
		logger:    cfg.Logger.With("component", "presence"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnChange registers fn to be called whenever the snapshot may have
// changed, including from timers and generator completions. fn may run on
// any goroutine and must not block on the caller's own event loop.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
	c.queue.OnChange(fn)
}

// Start reconciles the readings known at sign-in. A reconnect that
// happened while no session was shown is detected here through the
// durable offline flag.
func (c *Controller) Start() {
	c.transition(func(s State, wasOffline bool) (State, []Effect) {
		return Reconcile(s, wasOffline)
	})
}

// SetConnectivity feeds a connectivity reading. Repeating the recorded
// value is not a change and is ignored.
func (c *Controller) SetConnectivity(online bool) {
	c.transition(func(s State, wasOffline bool) (State, []Effect) {
		if s.Online == online {
			return s, nil
		}
		return ObserveConnectivity(s, online, wasOffline)
	})
}

// SetLocation feeds a location reading. nil means no reading was
// available and is ignored.
func (c *Controller) SetLocation(loc *model.Location) {
	if loc == nil {
		return
	}
	c.transition(func(s State, wasOffline bool) (State, []Effect) {
		return ObserveLocation(s, loc, wasOffline)
	})
}

// SetMode switches the status mode.
func (c *Controller) SetMode(mode model.StatusMode) {
	c.transition(func(s State, _ bool) (State, []Effect) {
		return SetMode(s, mode)
	})
}

// Ping broadcasts a safety ping to the rest of the family.
func (c *Controller) Ping() {
	c.transition(func(s State, _ bool) (State, []Effect) {
		return StartPing(s)
	})
}

// Generate requests a new safety message, replacing any request still in
// flight.
func (c *Controller) Generate() {
	c.opMu.Lock()
	c.startGeneration()
	c.opMu.Unlock()
	c.changed()
}

// DismissNotification closes the current banner.
func (c *Controller) DismissNotification() {
	c.queue.Dismiss()
}

// Snapshot returns a copy of the state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Users:      model.CloneUsers(c.state.Users),
		Mode:       c.state.Mode,
		Online:     c.state.Online,
		Generating: c.generating,
		Message:    c.message,
	}
	c.mu.Unlock()

	if n, ok := c.queue.Current(); ok {
		snap.Notification = &n
	}
	return snap
}

// Stop cancels the ping timer and any generation in flight. The durable
// flag is left as is so the next session can pick it up.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.pingTimer != nil {
		c.pingTimer.Stop()
		c.pingTimer = nil
	}
	c.pingSeq++
	c.genSeq++
	c.generating = false
	c.genCancel = nil
	c.mu.Unlock()

	c.cancel()
	c.queue.Dismiss()
}

// transition reads the offline flag, applies fn, commits the resulting
// state and then runs its effects in order.
func (c *Controller) transition(fn func(State, bool) (State, []Effect)) {
	c.opMu.Lock()
	wasOffline := c.readFlag()

	c.mu.Lock()
	next, effects := fn(c.state, wasOffline)
	c.state = next
	c.mu.Unlock()

	c.runEffects(effects)
	c.opMu.Unlock()

	c.changed()
}

func (c *Controller) runEffects(effects []Effect) {
	for _, e := range effects {
		c.logger.Debug("running effect", "effect", e.Kind.String())

		switch e.Kind {
		case EffectNotify:
			c.queue.Push(e.Message, e.Type)
		case EffectSetFlag:
			c.writeFlag(true)
		case EffectClearFlag:
			c.writeFlag(false)
		case EffectGenerate:
			c.startGeneration()
		case EffectSchedulePingReset:
			c.schedulePingReset()
		}
	}
}

// readFlag treats a failing store as "flag not set".
func (c *Controller) readFlag() bool {
	if c.flags == nil {
		return false
	}
	set, err := c.flags.GetFlag(c.ctx, store.KeyWasOffline)
	if err != nil {
		c.logger.Warn("reading offline flag", "error", err)
		return false
	}
	return set
}

// writeFlag logs failures and carries on with reduced durability.
func (c *Controller) writeFlag(set bool) {
	if c.flags == nil {
		return
	}
	var err error
	if set {
		err = c.flags.SetFlag(c.ctx, store.KeyWasOffline)
	} else {
		err = c.flags.ClearFlag(c.ctx, store.KeyWasOffline)
	}
	if err != nil {
		c.logger.Warn("writing offline flag", "set", set, "error", err)
	}
}

func (c *Controller) schedulePingReset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pingTimer != nil {
		c.pingTimer.Stop()
	}
	c.pingSeq++
	seq := c.pingSeq
	c.pingTimer = c.clock.AfterFunc(PingWindow, func() { c.endPing(seq) })
}

func (c *Controller) endPing(seq uint64) {
	c.mu.Lock()
	if seq != c.pingSeq {
		c.mu.Unlock()
		return
	}
	c.state = EndPing(c.state)
	c.pingTimer = nil
	c.mu.Unlock()

	c.changed()
}

// startGeneration cancels the request in flight, if any, and starts a
// new one. Only the newest request may store its result.
func (c *Controller) startGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genCancel != nil {
		c.genCancel()
	}
	c.genSeq++
	seq := c.genSeq

	ctx, cancel := context.WithCancel(c.ctx)
	c.genCancel = cancel
	c.generating = true
	c.message = ""

	user := c.state.CurrentUser()
	var loc *model.Location
	if user.LastLocation != nil {
		l := *user.LastLocation
		loc = &l
	}

	go func() {
		defer cancel()
		res := c.generator.Generate(ctx, user.Name, loc)
		c.finishGeneration(seq, res)
	}()
}

func (c *Controller) finishGeneration(seq uint64, res ai.Result) {
	c.mu.Lock()
	if seq != c.genSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale safety message", "seq", seq)
		return
	}
	c.generating = false
	c.genCancel = nil
	c.message = res.Text
	c.mu.Unlock()

	if res.Fallback {
		c.queue.Push(MsgGenFailed, model.NotificationWarning)
	}
	c.changed()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
