package session

import (
	"github.com/claude/fitcoach/internal/resttimer"
	"github.com/google/uuid"
)

// EventKind identifies a controller event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventExpanded
	EventCollapsed
	EventSetCompleted
	// EventSetRolledBack is sent when the backend refused a set that was
	// optimistically marked completed.
	EventSetRolledBack
	EventRestStarted
	EventAutoAdvanced
	EventElapsed
	EventFinished
	// EventRest forwards an event from the rest timer.
	EventRest
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventExpanded:
		return "expanded"
	case EventCollapsed:
		return "collapsed"
	case EventSetCompleted:
		return "set_completed"
	case EventSetRolledBack:
		return "set_rolled_back"
	case EventRestStarted:
		return "rest_started"
	case EventAutoAdvanced:
		return "auto_advanced"
	case EventElapsed:
		return "elapsed"
	case EventFinished:
		return "finished"
	case EventRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Event describes one observable change. Fields not relevant to Kind are zero.
type Event struct {
	Kind        EventKind
	ExerciseID  uuid.UUID
	SetNumber   int
	RestSeconds int
	Elapsed     int
	Summary     *Summary
	Rest        resttimer.Event
	Err         error
}

// Listener receives controller events. It is never called with the
// controller's lock held, so it may call back into the controller.
type Listener func(Event)
