// Package schedule provides cancellable repeating and one-shot tasks.
//
// Every component that mutates state from a timer owns the Task handles it
// creates and stops them when it leaves the state that needed them or when it
// is torn down.
package schedule

import (
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
// Stop is idempotent and may be called from inside the callback itself.
// After Stop no further invocations are scheduled; one that already began may
// still finish, so owners re-check their own state inside the callback.
type Task interface {
	Stop()
}

// Scheduler creates tasks and reports the current time.
type Scheduler interface {
	Now() time.Time
	Every(d time.Duration, fn func()) Task
	After(d time.Duration, fn func()) Task
}

// Realtime schedules tasks on the wall clock.
type Realtime struct{}

// Compile-time check: Realtime satisfies Scheduler.
var _ Scheduler = Realtime{}

// Now returns time.Now().
func (Realtime) Now() time.Time { return time.Now() }

// Every runs fn every d until the returned task is stopped.
func (Realtime) Every(d time.Duration, fn func()) Task {
	t := &realTask{done: make(chan struct{})}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !t.run(fn) {
					return
				}
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// After runs fn once after d unless the returned task is stopped first.
func (Realtime) After(d time.Duration, fn func()) Task {
	t := &realTask{done: make(chan struct{})}
	t.timer = time.AfterFunc(d, func() {
		t.run(fn)
	})
	return t
}

type realTask struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	timer   *time.Timer
	wg      sync.WaitGroup
}

// run invokes fn unless the task was stopped. It reports whether the task is still live.
func (t *realTask) run(fn func()) bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	t.mu.Unlock()
	fn()
	return true
}

func (t *realTask) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	close(t.done)
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
}

// Wait blocks until the goroutine behind a repeating task has exited.
// It must not be called from inside the task's own callback.
func Wait(t Task) {
	if rt, ok := t.(*realTask); ok {
		rt.wg.Wait()
	}
}
