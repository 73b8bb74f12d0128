package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// TestManualEvery verifies a repeating task fires once per period and stops
// firing after Stop.
func TestManualEvery(t *testing.T) {
	m := NewManual(epoch)
	n := 0
	task := m.Every(time.Second, func() { n++ })

	m.Advance(3 * time.Second)
	if n != 3 {
		t.Fatalf("ticks = %d, want 3", n)
	}

	task.Stop()
	m.Advance(5 * time.Second)
	if n != 3 {
		t.Errorf("ticks after Stop = %d, want 3", n)
	}
	if m.Pending() != 0 {
		t.Errorf("pending = %d, want 0", m.Pending())
	}
}

// TestManualAfter verifies a one-shot task fires exactly once at its due time.
func TestManualAfter(t *testing.T) {
	m := NewManual(epoch)
	var firedAt time.Time
	m.After(500*time.Millisecond, func() { firedAt = m.Now() })

	m.Advance(499 * time.Millisecond)
	if !firedAt.IsZero() {
		t.Fatal("fired before due time")
	}
	m.Advance(time.Millisecond)
	if want := epoch.Add(500 * time.Millisecond); !firedAt.Equal(want) {
		t.Errorf("fired at %v, want %v", firedAt, want)
	}
	m.Advance(time.Hour)
	if m.Pending() != 0 {
		t.Errorf("pending = %d, want 0", m.Pending())
	}
}

// TestManualStopFromCallback verifies a task may stop itself from inside its
// own callback without deadlocking.
func TestManualStopFromCallback(t *testing.T) {
	m := NewManual(epoch)
	n := 0
	var task Task
	task = m.Every(time.Second, func() {
		n++
		if n == 2 {
			task.Stop()
		}
	})
	m.Advance(10 * time.Second)
	if n != 2 {
		t.Errorf("ticks = %d, want 2", n)
	}
}

// TestManualOrdering verifies that tasks due at the same instant fire in
// creation order and that tasks scheduled by a callback join the same Advance.
func TestManualOrdering(t *testing.T) {
	m := NewManual(epoch)
	var order []string
	m.After(time.Second, func() {
		order = append(order, "a")
		m.After(time.Second, func() { order = append(order, "c") })
	})
	m.After(time.Second, func() { order = append(order, "b") })

	m.Advance(2 * time.Second)
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

// TestRealtimeEveryStops verifies the wall-clock ticker delivers ticks and its
// goroutine exits after Stop (goleak checks the exit).
func TestRealtimeEveryStops(t *testing.T) {
	var n atomic.Int32
	task := Realtime{}.Every(5*time.Millisecond, func() { n.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	task.Stop()
	task.Stop()
	Wait(task)

	if n.Load() < 2 {
		t.Fatalf("ticks = %d, want >= 2", n.Load())
	}
	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Errorf("ticks after Stop grew from %d to %d", after, got)
	}
}

// TestRealtimeAfterStopped verifies a stopped one-shot never fires.
func TestRealtimeAfterStopped(t *testing.T) {
	var fired atomic.Bool
	task := Realtime{}.After(10*time.Millisecond, func() { fired.Store(true) })
	task.Stop()
	time.Sleep(30 * time.Millisecond)
	if fired.Load() {
		t.Error("stopped task fired")
	}
}
