package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseRow is a row of the exercise library.
type ExerciseRow struct {
	ID        uuid.UUID
	Name      string
	BodyPart  string
	Equipment string
	Target    string
	GifURL    string
}

// WorkoutRow is a row ready for insertion into the workouts table.
type WorkoutRow struct {
	ID              uuid.UUID
	Name            string
	Description     string
	Category        string
	Difficulty      string
	DurationMinutes *int
}

// WorkoutExerciseRow places an exercise inside a workout with its prescription.
type WorkoutExerciseRow struct {
	ID          uuid.UUID
	WorkoutID   uuid.UUID
	ExerciseID  uuid.UUID
	OrderIndex  int
	Sets        int
	Reps        int
	Weight      *float64
	RestSeconds int
	Notes       string
}

// ClientRow is a row of the clients table.
type ClientRow struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AssignmentRow is a row of the workout_assignments table.
type AssignmentRow struct {
	ID              uuid.UUID
	WorkoutID       uuid.UUID
	ClientID        uuid.UUID
	AssignedDate    time.Time
	ScheduledDate   *time.Time
	Status          AssignmentStatus
	StartedAt       *time.Time
	CompletedAt     *time.Time
	DurationMinutes *int
}

// WorkoutLogRow is a row of the workout_logs table.
type WorkoutLogRow struct {
	ID                uuid.UUID
	AssignmentID      uuid.UUID
	WorkoutExerciseID uuid.UUID
	SetNumber         int
	RepsCompleted     int
	WeightUsed        float64
	RPE               *int
	Notes             string
	LoggedAt          time.Time
}

// Prescription limits enforced by the workout_exercises check constraints.
const (
	MinSets = 1
	MaxSets = 10
	MinReps = 1
	MaxReps = 100
)
