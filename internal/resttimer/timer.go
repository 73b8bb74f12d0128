// Package resttimer implements the rest countdown shown between sets.
package resttimer

import (
	"sync"
	"time"

	"github.com/claude/fitcoach/internal/schedule"
)

const (
	// TickInterval is the countdown resolution.
	TickInterval = time.Second
	// GracePeriod is how long the expired display stays up before closing.
	GracePeriod = time.Second
)

// Phase is the timer's lifecycle position.
type Phase int

const (
	Idle Phase = iota
	Running
	Paused
	Expired
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Expired:
		return "expired"
	default:
		return "idle"
	}
}

// State is the renderable timer state. It is recreated for every rest period.
type State struct {
	Visible          bool  `json:"visible"`
	TotalSeconds     int   `json:"total_seconds"`
	RemainingSeconds int   `json:"remaining_seconds"`
	Paused           bool  `json:"paused"`
	Phase            Phase `json:"phase"`
}

// EventKind identifies a timer event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventTick
	// EventCue is the alert fired on the ticks leaving 3, 2 and 1 seconds.
	EventCue
	// EventExpired is the completion cue fired when the countdown reaches zero.
	EventExpired
	EventPaused
	EventResumed
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventTick:
		return "tick"
	case EventCue:
		return "cue"
	case EventExpired:
		return "expired"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is delivered to the Listener after the timer's lock is released.
type Event struct {
	Kind      EventKind
	Remaining int
	Total     int
	// Skipped is set on EventClosed when the user dismissed the timer early.
	Skipped bool
}

// Listener receives timer events.
type Listener func(Event)

// Timer is a pausable countdown. The zero value is not usable; call New.
type Timer struct {
	mu     sync.Mutex
	sched  schedule.Scheduler
	notify Listener

	state State
	gen   int
	tick  schedule.Task
	grace schedule.Task
	// closed is terminal: Start and Resume do nothing afterwards.
	closed bool
}

// New creates an idle timer. notify may be nil.
func New(sched schedule.Scheduler, notify Listener) *Timer {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Timer{sched: sched, notify: notify}
}

// Start opens a new rest period of total seconds. Any previous period is
// discarded: remaining resets to total and the timer is unpaused. It reports
// false once the timer has been closed.
func (t *Timer) Start(total int) bool {
	if total < 0 {
		total = 0
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	t.stopTasksLocked()
	t.gen++
	t.state = State{
		Visible:          true,
		TotalSeconds:     total,
		RemainingSeconds: total,
		Phase:            Running,
	}
	events := []Event{{Kind: EventStarted, Remaining: total, Total: total}}
	if total == 0 {
		events = append(events, t.expireLocked())
	} else {
		t.tick = t.sched.Every(TickInterval, t.tickFunc(t.gen))
	}
	t.mu.Unlock()

	t.emit(events)
	return true
}

// Pause halts the countdown. It reports whether the timer was running.
func (t *Timer) Pause() bool {
	t.mu.Lock()
	if t.state.Phase != Running {
		t.mu.Unlock()
		return false
	}
	t.stopTick()
	t.state.Phase = Paused
	t.state.Paused = true
	ev := Event{Kind: EventPaused, Remaining: t.state.RemainingSeconds, Total: t.state.TotalSeconds}
	t.mu.Unlock()

	t.notify(ev)
	return true
}

// Resume continues a paused countdown. It reports whether the timer was paused.
func (t *Timer) Resume() bool {
	t.mu.Lock()
	if t.closed || t.state.Phase != Paused {
		t.mu.Unlock()
		return false
	}
	t.state.Phase = Running
	t.state.Paused = false
	t.tick = t.sched.Every(TickInterval, t.tickFunc(t.gen))
	ev := Event{Kind: EventResumed, Remaining: t.state.RemainingSeconds, Total: t.state.TotalSeconds}
	t.mu.Unlock()

	t.notify(ev)
	return true
}

// TogglePause pauses a running timer or resumes a paused one.
func (t *Timer) TogglePause() {
	if !t.Pause() {
		t.Resume()
	}
}

// Skip dismisses the timer immediately without waiting for expiry.
func (t *Timer) Skip() bool {
	t.mu.Lock()
	if t.state.Phase == Idle {
		t.mu.Unlock()
		return false
	}
	ev := t.closeLocked()
	ev.Skipped = true
	t.mu.Unlock()

	t.notify(ev)
	return true
}

// Close tears the timer down for good. No tick is delivered after Close
// returns and later calls to Start are ignored.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.state.Phase != Idle {
		t.closeLocked()
		return
	}
	t.stopTasksLocked()
}

// State returns a copy of the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns the remaining share of the period as a percentage.
func (t *Timer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.TotalSeconds == 0 {
		return 0
	}
	return float64(t.state.RemainingSeconds) / float64(t.state.TotalSeconds) * 100
}

func (t *Timer) tickFunc(gen int) func() {
	return func() { t.onTick(gen) }
}

func (t *Timer) onTick(gen int) {
	t.mu.Lock()
	if gen != t.gen || t.state.Phase != Running {
		t.mu.Unlock()
		return
	}

	var events []Event
	pre := t.state.RemainingSeconds
	if pre >= 1 && pre <= 3 {
		events = append(events, Event{Kind: EventCue, Remaining: pre, Total: t.state.TotalSeconds})
	}
	remaining := pre - 1
	if remaining < 0 {
		remaining = 0
	}
	t.state.RemainingSeconds = remaining
	events = append(events, Event{Kind: EventTick, Remaining: remaining, Total: t.state.TotalSeconds})
	if remaining == 0 {
		events = append(events, t.expireLocked())
	}
	t.mu.Unlock()

	t.emit(events)
}

// expireLocked moves a running timer to Expired and arms the grace close.
func (t *Timer) expireLocked() Event {
	t.stopTick()
	t.state.Phase = Expired
	gen := t.gen
	t.grace = t.sched.After(GracePeriod, func() { t.onGraceElapsed(gen) })
	return Event{Kind: EventExpired, Total: t.state.TotalSeconds}
}

func (t *Timer) onGraceElapsed(gen int) {
	t.mu.Lock()
	if gen != t.gen || t.state.Phase != Expired {
		t.mu.Unlock()
		return
	}
	ev := t.closeLocked()
	t.mu.Unlock()

	t.notify(ev)
}

func (t *Timer) closeLocked() Event {
	t.stopTasksLocked()
	ev := Event{Kind: EventClosed, Remaining: t.state.RemainingSeconds, Total: t.state.TotalSeconds}
	t.gen++
	t.state = State{}
	return ev
}

func (t *Timer) stopTick() {
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
}

func (t *Timer) stopTasksLocked() {
	t.stopTick()
	if t.grace != nil {
		t.grace.Stop()
		t.grace = nil
	}
}

func (t *Timer) emit(events []Event) {
	for _, ev := range events {
		t.notify(ev)
	}
}
