package resttimer

import (
	"testing"
	"time"

	"github.com/claude/fitcoach/internal/schedule"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) cues() []int {
	var out []int
	for _, ev := range r.events {
		if ev.Kind == EventCue {
			out = append(out, ev.Remaining)
		}
	}
	return out
}

func newTimer(t *testing.T) (*Timer, *schedule.Manual, *recorder) {
	t.Helper()
	clock := schedule.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	rec := &recorder{}
	return New(clock, rec.listen), clock, rec
}

// TestNinetySecondCountdown verifies a 90 s rest produces exactly 90 decrement
// ticks, cues on 3-2-1, expires at zero and closes after the grace period.
func TestNinetySecondCountdown(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(90)

	clock.Advance(89 * time.Second)
	if s := timer.State(); s.RemainingSeconds != 1 || s.Phase != Running {
		t.Fatalf("after 89s: remaining=%d phase=%v, want 1 running", s.RemainingSeconds, s.Phase)
	}

	clock.Advance(time.Second)
	s := timer.State()
	if s.RemainingSeconds != 0 || s.Phase != Expired || !s.Visible {
		t.Fatalf("after 90s: %+v, want expired and visible at 0", s)
	}
	if got := rec.count(EventTick); got != 90 {
		t.Errorf("ticks = %d, want 90", got)
	}
	cues := rec.cues()
	if len(cues) != 3 || cues[0] != 3 || cues[1] != 2 || cues[2] != 1 {
		t.Errorf("cues = %v, want [3 2 1]", cues)
	}
	if got := rec.count(EventExpired); got != 1 {
		t.Errorf("expired events = %d, want 1", got)
	}

	clock.Advance(GracePeriod - time.Millisecond)
	if timer.State().Phase != Expired {
		t.Fatal("closed before the grace period elapsed")
	}
	clock.Advance(time.Millisecond)
	if s := timer.State(); s.Phase != Idle || s.Visible {
		t.Errorf("after grace: %+v, want idle and hidden", s)
	}
	if got := rec.count(EventClosed); got != 1 {
		t.Errorf("closed events = %d, want 1", got)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending tasks = %d, want 0", clock.Pending())
	}
}

// TestPauseHaltsCountdown verifies pausing stops decrementing without losing
// the remaining seconds, and resuming continues from the same value.
func TestPauseHaltsCountdown(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(90)
	clock.Advance(10 * time.Second)

	if !timer.Pause() {
		t.Fatal("Pause() = false on a running timer")
	}
	ticks := rec.count(EventTick)
	clock.Advance(30 * time.Second)
	if s := timer.State(); s.RemainingSeconds != 80 || !s.Paused {
		t.Fatalf("paused state = %+v, want 80 remaining and paused", s)
	}
	if got := rec.count(EventTick); got != ticks {
		t.Errorf("ticks while paused = %d, want none", got-ticks)
	}

	if !timer.Resume() {
		t.Fatal("Resume() = false on a paused timer")
	}
	clock.Advance(5 * time.Second)
	if s := timer.State(); s.RemainingSeconds != 75 || s.Paused {
		t.Errorf("resumed state = %+v, want 75 remaining", s)
	}
}

// TestNoCuesWhilePaused verifies the 3-2-1 cues only fire on running ticks.
func TestNoCuesWhilePaused(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(5)
	clock.Advance(2 * time.Second)
	timer.TogglePause()
	clock.Advance(10 * time.Second)
	if cues := rec.cues(); len(cues) != 0 {
		t.Fatalf("cues while paused = %v, want none", cues)
	}

	timer.TogglePause()
	clock.Advance(3 * time.Second)
	if cues := rec.cues(); len(cues) != 3 {
		t.Errorf("cues after resume = %v, want 3", cues)
	}
}

// TestSkipClosesImmediately verifies an early dismissal does not wait for expiry.
func TestSkipClosesImmediately(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(60)
	clock.Advance(5 * time.Second)

	if !timer.Skip() {
		t.Fatal("Skip() = false on a running timer")
	}
	if s := timer.State(); s.Phase != Idle || s.Visible {
		t.Errorf("after skip: %+v, want idle", s)
	}
	last := rec.events[len(rec.events)-1]
	if last.Kind != EventClosed || !last.Skipped {
		t.Errorf("last event = %+v, want skipped close", last)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending tasks = %d, want 0", clock.Pending())
	}
	if timer.Skip() {
		t.Error("Skip() on an idle timer = true")
	}
}

// TestSkipDuringGrace verifies the expired display can be dismissed early.
func TestSkipDuringGrace(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(1)
	clock.Advance(time.Second)
	if timer.State().Phase != Expired {
		t.Fatal("timer did not expire")
	}
	timer.Skip()
	clock.Advance(5 * time.Second)
	if got := rec.count(EventClosed); got != 1 {
		t.Errorf("closed events = %d, want 1", got)
	}
}

// TestRestartResetsState verifies reopening the timer never carries state over
// from the previous rest period, including a paused flag and its ticker.
func TestRestartResetsState(t *testing.T) {
	timer, clock, _ := newTimer(t)
	timer.Start(60)
	clock.Advance(20 * time.Second)
	timer.Pause()

	timer.Start(45)
	if s := timer.State(); s.RemainingSeconds != 45 || s.TotalSeconds != 45 || s.Paused || s.Phase != Running {
		t.Fatalf("restarted state = %+v", s)
	}
	clock.Advance(time.Second)
	if got := timer.State().RemainingSeconds; got != 44 {
		t.Errorf("remaining after one tick = %d, want 44", got)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending tasks = %d, want a single ticker", clock.Pending())
	}
}

// TestZeroDurationExpiresImmediately verifies a zero rest goes straight to the
// expired display.
func TestZeroDurationExpiresImmediately(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(0)
	if timer.State().Phase != Expired {
		t.Fatalf("phase = %v, want expired", timer.State().Phase)
	}
	if rec.count(EventTick) != 0 {
		t.Error("zero-length rest produced ticks")
	}
	clock.Advance(GracePeriod)
	if timer.State().Phase != Idle {
		t.Errorf("phase = %v, want idle", timer.State().Phase)
	}
}

// TestCloseStopsTasks verifies teardown cancels every scheduled task.
func TestCloseStopsTasks(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(30)
	timer.Close()
	n := len(rec.events)
	clock.Advance(time.Minute)
	if len(rec.events) != n {
		t.Errorf("events after Close: %v", rec.events[n:])
	}
	if clock.Pending() != 0 {
		t.Errorf("pending tasks = %d, want 0", clock.Pending())
	}
}

// TestClosedTimerStaysClosed verifies Start and Resume are ignored once the
// timer has been closed.
func TestClosedTimerStaysClosed(t *testing.T) {
	timer, clock, rec := newTimer(t)
	timer.Start(30)
	timer.Pause()
	timer.Close()
	n := len(rec.events)

	if timer.Resume() {
		t.Error("Resume after Close reported true")
	}
	if timer.Start(30) {
		t.Error("Start after Close reported true")
	}
	clock.Advance(5 * time.Second)

	if s := timer.State(); s.Visible || s.Phase != Idle {
		t.Errorf("state = %+v, want idle", s)
	}
	if len(rec.events) != n {
		t.Errorf("events after Close: %v", rec.events[n:])
	}
	if clock.Pending() != 0 {
		t.Errorf("pending tasks = %d, want 0", clock.Pending())
	}
}

// TestProgress verifies the remaining share is reported as a percentage.
func TestProgress(t *testing.T) {
	timer, clock, _ := newTimer(t)
	if got := timer.Progress(); got != 0 {
		t.Errorf("idle progress = %v, want 0", got)
	}
	timer.Start(60)
	clock.Advance(15 * time.Second)
	if got := timer.Progress(); got != 75 {
		t.Errorf("progress = %v, want 75", got)
	}
}

// TestRealtimeTimerTeardown runs the timer on the wall clock and verifies
// Close leaves no ticker goroutine behind (checked by goleak in TestMain).
func TestRealtimeTimerTeardown(t *testing.T) {
	timer := New(schedule.Realtime{}, nil)
	timer.Start(60)
	timer.Close()
	if s := timer.State(); s.Visible {
		t.Errorf("state after Close = %+v", s)
	}
}
