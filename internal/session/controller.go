package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/resttimer"
	"github.com/claude/fitcoach/internal/schedule"
	"github.com/google/uuid"
)

const (
	// ElapsedInterval is how often the elapsed-seconds display is refreshed.
	ElapsedInterval = time.Second
	// AdvanceDelay is the pause between finishing an exercise and expanding the next.
	AdvanceDelay = 500 * time.Millisecond
)

var (
	ErrClosed          = errors.New("session closed")
	ErrNotActive       = errors.New("session is not active")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrStartInFlight   = errors.New("session start already in progress")
	ErrAlreadyFinished = errors.New("session already finished")
	ErrFinishInFlight  = errors.New("session finish already in progress")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownSet      = errors.New("unknown set")
	ErrSetCompleted    = errors.New("set already completed")
)

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Scheduler drives the elapsed tick, auto-advance and rest timer.
	// Defaults to schedule.Realtime.
	Scheduler schedule.Scheduler
	Listener  Listener
	Logger    *slog.Logger
}

// Controller owns one WorkoutSession. All methods are safe for concurrent use;
// backend calls are made without holding the lock.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	sched   schedule.Scheduler
	notify  Listener
	log     *slog.Logger
	rest    *resttimer.Timer

	session  WorkoutSession
	expanded int // index into session.Exercises, -1 when collapsed

	starting  bool
	finishing bool
	confirmed bool
	closed    bool

	// gen invalidates the elapsed tick; advanceGen invalidates a pending advance.
	gen        int
	advanceGen int
	elapsed    schedule.Task
	advance    schedule.Task
}

// Load fetches an assignment and builds a controller for it.
func Load(ctx context.Context, backend Backend, assignmentID uuid.UUID, opts Options) (*Controller, error) {
	d, err := backend.FetchAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("fetching assignment %s: %w", assignmentID, err)
	}
	return New(backend, d, opts), nil
}

// New builds a controller from an already fetched assignment. An assignment
// that is already in progress resumes: its elapsed tick starts immediately and
// the first unfinished exercise is expanded.
func New(backend Backend, d *models.AssignmentDetail, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Realtime{}
	}
	if opts.Listener == nil {
		opts.Listener = func(Event) {}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	c := &Controller{
		backend:  backend,
		sched:    opts.Scheduler,
		notify:   opts.Listener,
		log:      opts.Logger.With("assignment", d.ID),
		session:  newSession(d),
		expanded: -1,
	}
	c.rest = resttimer.New(c.sched, func(ev resttimer.Event) {
		c.notify(Event{Kind: EventRest, Rest: ev})
	})

	switch c.session.Status {
	case Active:
		if c.session.StartedAt == nil {
			now := c.sched.Now()
			c.session.StartedAt = &now
		}
		c.session.ElapsedSeconds = c.elapsedSince(*c.session.StartedAt)
		c.expanded = c.firstUnfinished()
		c.startElapsedLocked()
	case Completed:
		c.confirmed = true
	}
	return c
}

// Start moves the session from NotStarted to Active. It blocks on the backend:
// if the remote start fails the session stays NotStarted.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.starting {
		c.mu.Unlock()
		return ErrStartInFlight
	}
	if c.session.Status != NotStarted {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.starting = true
	id := c.session.AssignmentID
	c.mu.Unlock()

	var startedAt *time.Time
	_, err := c.backend.StartAssignment(ctx, id)
	if errors.Is(err, models.ErrConflict) {
		// The backend already started it, e.g. a retried request whose first
		// response was lost. Resume from the server's start time.
		c.log.Warn("assignment already started, resuming")
		startedAt, err = c.serverStart(ctx, id)
	}

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		c.log.Error("start assignment", "error", err)
		return fmt.Errorf("starting assignment: %w", err)
	}
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if startedAt == nil {
		now := c.sched.Now()
		startedAt = &now
	}
	c.session.Status = Active
	c.session.StartedAt = startedAt
	c.session.ElapsedSeconds = c.elapsedSince(*startedAt)
	events := []Event{{Kind: EventStarted}}
	if len(c.session.Exercises) > 0 {
		c.expanded = 0
		events = append(events, Event{Kind: EventExpanded, ExerciseID: c.session.Exercises[0].ExerciseID})
	}
	c.startElapsedLocked()
	c.mu.Unlock()

	c.emit(events)
	return nil
}

// serverStart refetches an assignment the backend reports as already started
// and returns its recorded start time.
func (c *Controller) serverStart(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	d, err := c.backend.FetchAssignment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("refetching started assignment: %w", err)
	}
	switch {
	case d.Status.Terminal():
		return nil, fmt.Errorf("assignment is %s: %w", d.Status, ErrAlreadyFinished)
	case d.Status != models.StatusInProgress:
		return nil, fmt.Errorf("assignment is %s: %w", d.Status, models.ErrConflict)
	}
	if d.StartedAt == nil {
		now := c.sched.Now()
		return &now, nil
	}
	started := *d.StartedAt
	return &started, nil
}

// Finish moves an Active session to Completed and reports completion to the
// backend. The returned summary is always usable: when the backend call fails
// the session is still Completed, the summary carries the locally measured
// duration with Confirmed false, and the error is returned alongside it.
// Calling Finish again on an unconfirmed session retries the backend call.
func (c *Controller) Finish(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return Summary{}, err
	}
	if c.finishing {
		c.mu.Unlock()
		return Summary{}, ErrFinishInFlight
	}
	switch c.session.Status {
	case NotStarted:
		c.mu.Unlock()
		return Summary{}, ErrNotActive
	case Completed:
		if c.confirmed {
			c.mu.Unlock()
			return Summary{}, ErrAlreadyFinished
		}
	case Active:
		now := c.sched.Now()
		c.session.Status = Completed
		c.session.CompletedAt = &now
		c.session.ElapsedSeconds = c.elapsedSince(*c.session.StartedAt)
		c.gen++
		c.advanceGen++
		c.stopTasksLocked()
	}
	c.finishing = true
	summary := c.summaryLocked()
	id := c.session.AssignmentID
	c.mu.Unlock()

	c.rest.Close()

	res, err := c.backend.CompleteAssignment(ctx, id)

	c.mu.Lock()
	c.finishing = false
	if err == nil {
		c.confirmed = true
		summary.Confirmed = true
		if res != nil && res.DurationMinutes != nil {
			summary.DurationMinutes = *res.DurationMinutes
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error("complete assignment", "error", err)
		err = fmt.Errorf("completing assignment: %w", err)
	}
	c.notify(Event{Kind: EventFinished, Summary: &summary, Err: err})
	return summary, err
}

// ToggleExercise expands exerciseID, or collapses it if it is already the
// expanded one. At most one exercise is expanded at a time.
func (c *Controller) ToggleExercise(exerciseID uuid.UUID) error {
	c.mu.Lock()
	if err := c.checkOpenLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.session.Status == Completed {
		c.mu.Unlock()
		return ErrAlreadyFinished
	}
	idx := c.exerciseIndex(exerciseID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownExercise
	}
	ev := Event{Kind: EventExpanded, ExerciseID: exerciseID}
	if c.expanded == idx {
		c.expanded = -1
		ev.Kind = EventCollapsed
	} else {
		c.expanded = idx
	}
	c.mu.Unlock()

	c.notify(ev)
	return nil
}

// UpdateReps edits the reps of an uncompleted set. Input that does not parse
// as a number, or is negative, is stored as 0.
func (c *Controller) UpdateReps(exerciseID uuid.UUID, setNumber int, raw string) error {
	reps := parseReps(raw)
	return c.editSet(exerciseID, setNumber, func(l *SetLog) { l.RepsCompleted = reps })
}

// UpdateWeight edits the weight of an uncompleted set with the same lenient
// parsing as UpdateReps.
func (c *Controller) UpdateWeight(exerciseID uuid.UUID, setNumber int, raw string) error {
	weight := parseLenient(raw)
	return c.editSet(exerciseID, setNumber, func(l *SetLog) { l.WeightUsed = weight })
}

func (c *Controller) editSet(exerciseID uuid.UUID, setNumber int, edit func(*SetLog)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkActiveLocked(); err != nil {
		return err
	}
	l, err := c.slotLocked(exerciseID, setNumber)
	if err != nil {
		return err
	}
	if l.Completed {
		return ErrSetCompleted
	}
	edit(l)
	return nil
}

// CompleteSet logs one set. The slot is marked completed before the backend
// call so a second completion of the same slot is refused while the first is
// in flight; if the backend refuses the set the slot is rolled back.
// On success a rest period starts unless this was the exercise's last set,
// and when the exercise is finished the next one is expanded after AdvanceDelay.
func (c *Controller) CompleteSet(ctx context.Context, exerciseID uuid.UUID, setNumber int) error {
	c.mu.Lock()
	if err := c.checkActiveLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	l, err := c.slotLocked(exerciseID, setNumber)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if l.Completed {
		c.mu.Unlock()
		return ErrSetCompleted
	}
	now := c.sched.Now()
	l.Completed = true
	l.Timestamp = &now
	entry := models.SetEntry{
		WorkoutExerciseID: exerciseID,
		SetNumber:         setNumber,
		RepsCompleted:     l.RepsCompleted,
		WeightUsed:        l.WeightUsed,
	}
	id := c.session.AssignmentID
	c.mu.Unlock()

	_, err = c.backend.LogSet(ctx, id, entry)
	if errors.Is(err, models.ErrConflict) {
		// The backend already holds this set, e.g. from a retried request
		// whose first response was lost.
		c.log.Warn("set already logged", "exercise", exerciseID, "set", setNumber)
		err = nil
	}

	c.mu.Lock()
	idx := c.exerciseIndex(exerciseID)
	ex := &c.session.Exercises[idx]
	if err != nil {
		l := &ex.Logs[setNumber-1]
		l.Completed = false
		l.Timestamp = nil
		c.mu.Unlock()

		c.log.Error("log set", "exercise", exerciseID, "set", setNumber, "error", err)
		err = fmt.Errorf("logging set %d: %w", setNumber, err)
		c.notify(Event{Kind: EventSetRolledBack, ExerciseID: exerciseID, SetNumber: setNumber, Err: err})
		return err
	}

	live := !c.closed && c.session.Status == Active
	rest := live && setNumber < ex.TargetSets
	restSeconds := ex.RestSeconds
	if live && ex.Done() && idx+1 < len(c.session.Exercises) {
		c.scheduleAdvanceLocked(idx + 1)
	}
	c.mu.Unlock()

	c.notify(Event{Kind: EventSetCompleted, ExerciseID: exerciseID, SetNumber: setNumber})
	if rest {
		c.startRest(exerciseID, restSeconds)
	}
	return nil
}

// StartRest opens a rest period for an exercise's configured rest, independent
// of set completion.
func (c *Controller) StartRest(exerciseID uuid.UUID) error {
	c.mu.Lock()
	if err := c.checkActiveLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	idx := c.exerciseIndex(exerciseID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownExercise
	}
	seconds := c.session.Exercises[idx].RestSeconds
	c.mu.Unlock()

	c.startRest(exerciseID, seconds)
	return nil
}

// startRest is called without the lock held, so a listener or another
// goroutine may have closed or finished the session in the meantime.
func (c *Controller) startRest(exerciseID uuid.UUID, seconds int) {
	c.mu.Lock()
	live := !c.closed && c.session.Status == Active
	c.mu.Unlock()
	if !live {
		return
	}
	c.notify(Event{Kind: EventRestStarted, ExerciseID: exerciseID, RestSeconds: seconds})
	c.rest.Start(seconds)
}

// Rest returns the rest timer owned by the controller.
func (c *Controller) Rest() *resttimer.Timer {
	return c.rest
}

// Leave asks to abandon the screen. While the session is Active, confirm is
// consulted and leaving only proceeds if it returns true. Leaving closes the
// controller. Logged sets are already held by the backend either way.
func (c *Controller) Leave(confirm func() bool) bool {
	c.mu.Lock()
	active := !c.closed && c.session.Status == Active
	c.mu.Unlock()

	if active && confirm != nil && !confirm() {
		return false
	}
	c.Close()
	return true
}

// Close cancels the elapsed tick, any pending auto-advance and the rest timer.
// No callback fires after Close returns. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.advanceGen++
	c.stopTasksLocked()
	c.mu.Unlock()

	c.rest.Close()
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Session        WorkoutSession  `json:"session"`
	Expanded       uuid.UUID       `json:"expanded"`
	CompletedSets  int             `json:"completed_sets"`
	TotalSets      int             `json:"total_sets"`
	CompletionRate int             `json:"completion_rate"`
	Rest           resttimer.State `json:"rest"`
	Closed         bool            `json:"closed"`
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Session: c.session.clone(),
		Closed:  c.closed,
	}
	if c.expanded >= 0 {
		s.Expanded = c.session.Exercises[c.expanded].ExerciseID
	}
	s.CompletedSets, s.TotalSets = c.session.Totals()
	c.mu.Unlock()

	s.CompletionRate = models.CompletionRate(s.CompletedSets, s.TotalSets)
	s.Rest = c.rest.State()
	return s
}

func (c *Controller) checkOpenLocked() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Controller) checkActiveLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.session.Status != Active {
		return ErrNotActive
	}
	return nil
}

func (c *Controller) exerciseIndex(id uuid.UUID) int {
	for i := range c.session.Exercises {
		if c.session.Exercises[i].ExerciseID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) slotLocked(exerciseID uuid.UUID, setNumber int) (*SetLog, error) {
	idx := c.exerciseIndex(exerciseID)
	if idx < 0 {
		return nil, ErrUnknownExercise
	}
	ex := &c.session.Exercises[idx]
	if setNumber < 1 || setNumber > len(ex.Logs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrUnknownSet, setNumber, len(ex.Logs))
	}
	return &ex.Logs[setNumber-1], nil
}

func (c *Controller) firstUnfinished() int {
	for i := range c.session.Exercises {
		if !c.session.Exercises[i].Done() {
			return i
		}
	}
	return -1
}

func (c *Controller) elapsedSince(start time.Time) int {
	d := c.sched.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (c *Controller) startElapsedLocked() {
	gen := c.gen
	c.elapsed = c.sched.Every(ElapsedInterval, func() { c.onElapsed(gen) })
}

func (c *Controller) onElapsed(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.session.Status != Active {
		c.mu.Unlock()
		return
	}
	c.session.ElapsedSeconds = c.elapsedSince(*c.session.StartedAt)
	elapsed := c.session.ElapsedSeconds
	c.mu.Unlock()

	c.notify(Event{Kind: EventElapsed, Elapsed: elapsed})
}

func (c *Controller) scheduleAdvanceLocked(next int) {
	if c.advance != nil {
		c.advance.Stop()
	}
	c.advanceGen++
	gen := c.advanceGen
	c.advance = c.sched.After(AdvanceDelay, func() { c.onAdvance(gen, next) })
}

func (c *Controller) onAdvance(gen, next int) {
	c.mu.Lock()
	if gen != c.advanceGen || c.closed || c.session.Status != Active {
		c.mu.Unlock()
		return
	}
	c.advance = nil
	c.expanded = next
	id := c.session.Exercises[next].ExerciseID
	c.mu.Unlock()

	c.notify(Event{Kind: EventAutoAdvanced, ExerciseID: id})
}

func (c *Controller) stopTasksLocked() {
	if c.elapsed != nil {
		c.elapsed.Stop()
		c.elapsed = nil
	}
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

func (c *Controller) emit(events []Event) {
	for _, ev := range events {
		c.notify(ev)
	}
}
