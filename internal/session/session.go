// Package session drives one in-progress workout: starting it, logging sets,
// resting between them, advancing through exercises and finishing.
package session

import (
	"context"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// Status is the lifecycle of a workout session.
type Status int

const (
	NotStarted Status = iota
	Active
	Completed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "not_started"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// statusFromAssignment maps a backend assignment status onto a session status.
func statusFromAssignment(s models.AssignmentStatus) Status {
	switch s {
	case models.StatusInProgress:
		return Active
	case models.StatusCompleted, models.StatusSkipped:
		return Completed
	default:
		return NotStarted
	}
}

// SetLog is one prescribed set. Once Completed, its numbers are frozen.
type SetLog struct {
	SetNumber     int        `json:"set_number"`
	RepsCompleted int        `json:"reps_completed"`
	WeightUsed    float64    `json:"weight_used"`
	Completed     bool       `json:"completed"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// ExerciseProgress tracks one exercise. len(Logs) always equals TargetSets.
type ExerciseProgress struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	Name         string    `json:"name"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   int       `json:"target_reps"`
	TargetWeight *float64  `json:"target_weight,omitempty"`
	RestSeconds  int       `json:"rest_seconds"`
	Logs         []SetLog  `json:"logs"`
}

// CompletedSets counts the completed slots.
func (e *ExerciseProgress) CompletedSets() int {
	n := 0
	for _, l := range e.Logs {
		if l.Completed {
			n++
		}
	}
	return n
}

// Done reports whether every slot is completed.
func (e *ExerciseProgress) Done() bool {
	return e.CompletedSets() == len(e.Logs)
}

// WorkoutSession is the state of one assignment being worked through.
type WorkoutSession struct {
	AssignmentID   uuid.UUID          `json:"assignment_id"`
	WorkoutName    string             `json:"workout_name"`
	Exercises      []ExerciseProgress `json:"exercises"`
	Status         Status             `json:"status"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	ElapsedSeconds int                `json:"elapsed_seconds"`
}

// Totals returns completed and prescribed set counts across all exercises.
func (s *WorkoutSession) Totals() (completed, total int) {
	for i := range s.Exercises {
		completed += s.Exercises[i].CompletedSets()
		total += s.Exercises[i].TargetSets
	}
	return completed, total
}

func (s *WorkoutSession) clone() WorkoutSession {
	out := *s
	out.StartedAt = cloneTime(s.StartedAt)
	out.CompletedAt = cloneTime(s.CompletedAt)
	out.Exercises = make([]ExerciseProgress, len(s.Exercises))
	for i, ex := range s.Exercises {
		ex.Logs = append([]SetLog(nil), ex.Logs...)
		for j := range ex.Logs {
			ex.Logs[j].Timestamp = cloneTime(ex.Logs[j].Timestamp)
		}
		if ex.TargetWeight != nil {
			w := *ex.TargetWeight
			ex.TargetWeight = &w
		}
		out.Exercises[i] = ex
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// newSession builds a session from an assignment detail. Every exercise gets
// one slot per target set pre-filled with the prescription; sets the backend
// already holds fill their slot and are marked completed.
func newSession(d *models.AssignmentDetail) WorkoutSession {
	s := WorkoutSession{
		AssignmentID: d.ID,
		WorkoutName:  d.WorkoutName,
		Status:       statusFromAssignment(d.Status),
		StartedAt:    cloneTime(d.StartedAt),
		CompletedAt:  cloneTime(d.CompletedAt),
		Exercises:    make([]ExerciseProgress, 0, len(d.Exercises)),
	}

	for _, ex := range d.Exercises {
		p := ExerciseProgress{
			ExerciseID:  ex.ID,
			Name:        ex.Name,
			TargetSets:  ex.Sets,
			TargetReps:  ex.Reps,
			RestSeconds: ex.RestSeconds,
			Logs:        make([]SetLog, ex.Sets),
		}
		var weight float64
		if ex.Weight != nil {
			weight = *ex.Weight
			p.TargetWeight = &weight
		}
		for i := range p.Logs {
			p.Logs[i] = SetLog{SetNumber: i + 1, RepsCompleted: ex.Reps, WeightUsed: weight}
		}
		for _, rec := range ex.Logs {
			if rec.SetNumber < 1 || rec.SetNumber > ex.Sets {
				continue
			}
			at := rec.LoggedAt
			p.Logs[rec.SetNumber-1] = SetLog{
				SetNumber:     rec.SetNumber,
				RepsCompleted: rec.RepsCompleted,
				WeightUsed:    rec.WeightUsed,
				Completed:     true,
				Timestamp:     &at,
			}
		}
		s.Exercises = append(s.Exercises, p)
	}
	return s
}

// Backend is the assignment service the controller reports to.
// Both the REST client and the in-process storage layer satisfy it.
type Backend interface {
	FetchAssignment(ctx context.Context, id uuid.UUID) (*models.AssignmentDetail, error)
	StartAssignment(ctx context.Context, id uuid.UUID) (*models.StartResult, error)
	LogSet(ctx context.Context, id uuid.UUID, entry models.SetEntry) (*models.SetRecord, error)
	CompleteAssignment(ctx context.Context, id uuid.UUID) (*models.CompletionResult, error)
}
