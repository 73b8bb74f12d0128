package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentSummary is one entry of a client's assignment list.
type AssignmentSummary struct {
	ID              uuid.UUID        `json:"id"`
	WorkoutID       uuid.UUID        `json:"workout_id"`
	WorkoutName     string           `json:"workout_name"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	Difficulty      string           `json:"difficulty,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	ExerciseCount   int              `json:"exercise_count"`
	Status          AssignmentStatus `json:"status"`
	AssignedDate    time.Time        `json:"assigned_date"`
	ScheduledDate   *time.Time       `json:"scheduled_date,omitempty"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	LoggedSets      int              `json:"logged_sets"`
}

// AssignmentDetail is an assignment with its ordered exercises and any sets
// already logged against it.
type AssignmentDetail struct {
	ID              uuid.UUID            `json:"id"`
	WorkoutID       uuid.UUID            `json:"workout_id"`
	WorkoutName     string               `json:"workout_name"`
	Description     string               `json:"description,omitempty"`
	Category        string               `json:"category,omitempty"`
	Difficulty      string               `json:"difficulty,omitempty"`
	DurationMinutes *int                 `json:"duration_minutes,omitempty"`
	Status          AssignmentStatus     `json:"status"`
	AssignedDate    time.Time            `json:"assigned_date"`
	ScheduledDate   *time.Time           `json:"scheduled_date,omitempty"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Exercises       []AssignmentExercise `json:"exercises"`
}

// AssignmentExercise is one prescribed exercise inside an assignment.
// ID is the workout-exercise id; ExerciseID points into the exercise library.
type AssignmentExercise struct {
	ID          uuid.UUID   `json:"id"`
	ExerciseID  uuid.UUID   `json:"exercise_id"`
	Name        string      `json:"name"`
	BodyPart    string      `json:"body_part,omitempty"`
	Equipment   string      `json:"equipment,omitempty"`
	Target      string      `json:"target,omitempty"`
	GifURL      string      `json:"gif_url,omitempty"`
	Sets        int         `json:"sets"`
	Reps        int         `json:"reps"`
	Weight      *float64    `json:"weight,omitempty"`
	RestSeconds int         `json:"rest_seconds"`
	Notes       string      `json:"notes,omitempty"`
	OrderIndex  int         `json:"order_index"`
	Logs        []SetRecord `json:"logs"`
}

// SetEntry is the payload for logging one completed set.
type SetEntry struct {
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	SetNumber         int       `json:"set_number"`
	RepsCompleted     int       `json:"reps_completed"`
	WeightUsed        float64   `json:"weight_used"`
	RPE               *int      `json:"rpe,omitempty"`
	Notes             string    `json:"notes,omitempty"`
}

// SetRecord is a set as persisted by the backend.
type SetRecord struct {
	ID            uuid.UUID `json:"id"`
	SetNumber     int       `json:"set_number"`
	RepsCompleted int       `json:"reps_completed"`
	WeightUsed    float64   `json:"weight_used"`
	RPE           *int      `json:"rpe,omitempty"`
	LoggedAt      time.Time `json:"logged_at"`
}

// StartResult is returned when an assignment is started.
type StartResult struct {
	ID        uuid.UUID        `json:"id"`
	Status    AssignmentStatus `json:"status"`
	StartedAt time.Time        `json:"started_at"`
}

// CompletionResult is returned when an assignment is completed.
type CompletionResult struct {
	ID              uuid.UUID        `json:"id"`
	Status          AssignmentStatus `json:"status"`
	CompletedAt     time.Time        `json:"completed_at"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
}

// SkipResult is returned when an assignment is skipped.
type SkipResult struct {
	ID     uuid.UUID        `json:"id"`
	Status AssignmentStatus `json:"status"`
}

// TotalSets sums the prescribed sets across all exercises.
func (d *AssignmentDetail) TotalSets() int {
	n := 0
	for _, ex := range d.Exercises {
		n += ex.Sets
	}
	return n
}

// LoggedSets counts the logged sets that fall inside each exercise's prescription.
func (d *AssignmentDetail) LoggedSets() int {
	n := 0
	for _, ex := range d.Exercises {
		seen := make(map[int]bool, len(ex.Logs))
		for _, l := range ex.Logs {
			if l.SetNumber >= 1 && l.SetNumber <= ex.Sets && !seen[l.SetNumber] {
				seen[l.SetNumber] = true
				n++
			}
		}
	}
	return n
}
