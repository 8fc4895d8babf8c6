// Package notify holds the single transient banner shown to the user.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/store"
)

// DisplayDuration is how long a banner stays up unless replaced or
// dismissed.
const DisplayDuration = 5000 * time.Millisecond

const historyTimeout = 2 * time.Second

// Queue keeps at most one live notification. Pushing replaces the current
// banner and restarts the expiry timer.
type Queue struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	current  *model.Notification
	deadline time.Time
	timer    clockwork.Timer
	lastID   int64
	onChange func()

	history store.History
	logger  *slog.Logger
	pending sync.WaitGroup
}

// NewQueue creates an empty queue driven by clock. history may be nil.
func NewQueue(clock clockwork.Clock, history store.History, logger *slog.Logger) *Queue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{clock: clock, history: history, logger: logger}
}

// OnChange registers fn to be called after the banner changes, including
// on expiry. fn runs without the queue lock held.
func (q *Queue) OnChange(fn func()) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push shows message, replacing whatever is displayed. The history write
// happens in the background; see Wait.
func (q *Queue) Push(message string, typ model.NotificationType) model.Notification {
	q.mu.Lock()
	now := q.clock.Now()
	id := now.UnixMilli()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id

	n := model.Notification{ID: id, Message: message, Type: typ, CreatedAt: now}
	q.stopTimerLocked()
	q.current = &n
	q.deadline = now.Add(DisplayDuration)
	q.timer = q.clock.AfterFunc(DisplayDuration, func() { q.expire(id) })
	onChange := q.onChange
	q.mu.Unlock()

	if q.history != nil {
		q.pending.Add(1)
		go func() {
			defer q.pending.Done()
			q.record(n)
		}()
	}
	if onChange != nil {
		onChange()
	}
	return n
}

// Wait blocks until every history write started by Push has finished.
func (q *Queue) Wait() {
	q.pending.Wait()
}

// Dismiss closes the current banner early.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	q.stopTimerLocked()
	q.current = nil
	onChange := q.onChange
	q.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Current returns the live banner, if any.
func (q *Queue) Current() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil || !q.clock.Now().Before(q.deadline) {
		return model.Notification{}, false
	}
	return *q.current, true
}

// expire drops the banner identified by id. A banner that has already
// been replaced or dismissed is left alone.
func (q *Queue) expire(id int64) {
	q.mu.Lock()
	if q.current == nil || q.current.ID != id {
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.timer = nil
	onChange := q.onChange
	q.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

func (q *Queue) stopTimerLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// record appends n to the history. It runs on its own goroutine so a
// slow store never holds up Push.
func (q *Queue) record(n model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := q.history.AppendNotification(ctx, n); err != nil {
		q.logger.Warn("recording notification", "error", err)
	}
}
