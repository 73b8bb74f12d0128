package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exercise library paging.
const (
	DefaultExerciseLimit = 50
	MaxExerciseLimit     = 200
)

// Defaults applied to a workout exercise when the request leaves them out.
const (
	DefaultSets        = 3
	DefaultReps        = 10
	DefaultRestSeconds = 60
)

// Exercise is an entry of the exercise library.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BodyPart     string    `json:"body_part"`
	Equipment    string    `json:"equipment"`
	Target       string    `json:"target"`
	GifURL       string    `json:"gif_url,omitempty"`
	Instructions []string  `json:"instructions"`
	Custom       bool      `json:"is_custom"`
}

// ExerciseQuery filters the exercise library. Text filters are case-insensitive;
// Search matches a substring of the name.
type ExerciseQuery struct {
	Search    string
	BodyPart  string
	Target    string
	Equipment string
	Limit     int
	Offset    int
}

// Normalize applies the default limit and caps it at MaxExerciseLimit.
func (q *ExerciseQuery) Normalize() error {
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("limit and offset must not be negative: %w", ErrInvalid)
	}
	if q.Limit == 0 {
		q.Limit = DefaultExerciseLimit
	}
	if q.Limit > MaxExerciseLimit {
		q.Limit = MaxExerciseLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	return nil
}

// ExerciseFacets lists the distinct values the library can be filtered by.
type ExerciseFacets struct {
	BodyParts []string `json:"body_parts"`
	Targets   []string `json:"targets"`
	Equipment []string `json:"equipment"`
}

// NewExercise is a trainer-defined exercise added to the library.
type NewExercise struct {
	Name         string   `json:"name"`
	BodyPart     string   `json:"body_part"`
	Equipment    string   `json:"equipment"`
	Target       string   `json:"target"`
	GifURL       string   `json:"gif_url"`
	Instructions []string `json:"instructions"`
}

func (in *NewExercise) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	return nil
}

// Workout is a trainer's workout template with its ordered exercises.
type Workout struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Category        string            `json:"category,omitempty"`
	Difficulty      string            `json:"difficulty,omitempty"`
	DurationMinutes *int              `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Exercises       []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is one prescribed exercise of a workout template.
type WorkoutExercise struct {
	ID           uuid.UUID `json:"id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	OrderIndex   int       `json:"order_index"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Weight       *float64  `json:"weight,omitempty"`
	RestSeconds  int       `json:"rest_seconds"`
	Notes        string    `json:"notes,omitempty"`
}

// WorkoutExerciseInput prescribes one exercise when building a workout.
// Zero Sets and Reps and a nil RestSeconds take the defaults; a nil
// OrderIndex takes the position in the list.
type WorkoutExerciseInput struct {
	ExerciseID  uuid.UUID `json:"exercise_id"`
	OrderIndex  *int      `json:"order_index,omitempty"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps"`
	Weight      *float64  `json:"weight,omitempty"`
	RestSeconds *int      `json:"rest_seconds,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// WorkoutInput creates a workout.
type WorkoutInput struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Category        string                 `json:"category"`
	Difficulty      string                 `json:"difficulty"`
	DurationMinutes *int                   `json:"duration_minutes,omitempty"`
	Exercises       []WorkoutExerciseInput `json:"exercises"`
}

// Normalize fills defaults in place and checks the prescription limits.
func (in *WorkoutInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	if err := checkDuration(in.DurationMinutes); err != nil {
		return err
	}
	return normalizeExercises(in.Exercises)
}

// WorkoutPatch updates a workout. Nil fields are left unchanged; a non-nil
// Exercises replaces the whole exercise list.
type WorkoutPatch struct {
	Name            *string                `json:"name,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Category        *string                `json:"category,omitempty"`
	Difficulty      *string                `json:"difficulty,omitempty"`
	DurationMinutes *int                   `json:"duration_minutes,omitempty"`
	Exercises       []WorkoutExerciseInput `json:"exercises,omitempty"`
}

func (p *WorkoutPatch) Normalize() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return fmt.Errorf("name must not be empty: %w", ErrInvalid)
		}
		p.Name = &name
	}
	if err := checkDuration(p.DurationMinutes); err != nil {
		return err
	}
	return normalizeExercises(p.Exercises)
}

func checkDuration(d *int) error {
	if d != nil && *d <= 0 {
		return fmt.Errorf("duration_minutes must be positive: %w", ErrInvalid)
	}
	return nil
}

func normalizeExercises(items []WorkoutExerciseInput) error {
	for i := range items {
		it := &items[i]
		if it.ExerciseID == uuid.Nil {
			return fmt.Errorf("exercise %d: exercise_id is required: %w", i+1, ErrInvalid)
		}
		if it.OrderIndex == nil {
			idx := i
			it.OrderIndex = &idx
		}
		if it.Sets == 0 {
			it.Sets = DefaultSets
		}
		if it.Reps == 0 {
			it.Reps = DefaultReps
		}
		if it.RestSeconds == nil {
			rest := DefaultRestSeconds
			it.RestSeconds = &rest
		}
		switch {
		case it.Sets < MinSets || it.Sets > MaxSets:
			return fmt.Errorf("exercise %d: sets must be %d..%d: %w", i+1, MinSets, MaxSets, ErrInvalid)
		case it.Reps < MinReps || it.Reps > MaxReps:
			return fmt.Errorf("exercise %d: reps must be %d..%d: %w", i+1, MinReps, MaxReps, ErrInvalid)
		case *it.RestSeconds < 0:
			return fmt.Errorf("exercise %d: rest_seconds must not be negative: %w", i+1, ErrInvalid)
		case it.Weight != nil && *it.Weight < 0:
			return fmt.Errorf("exercise %d: weight must not be negative: %w", i+1, ErrInvalid)
		}
	}
	return nil
}

// Client is a member of a trainer's roster.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientInput adds a client to the roster.
type ClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (in *ClientInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("name and email are required: %w", ErrInvalid)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return err
	}
	in.Email = email
	return nil
}

// ClientPatch updates a client. Nil fields are left unchanged.
type ClientPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (p *ClientPatch) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return fmt.Errorf("name must not be empty: %w", ErrInvalid)
		}
		p.Name = &name
	}
	if p.Email != nil {
		email, err := normalizeEmail(*p.Email)
		if err != nil {
			return err
		}
		p.Email = &email
	}
	return nil
}

// normalizeEmail accepts a bare address and lower-cases it.
func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("invalid email %q: %w", raw, ErrInvalid)
	}
	return strings.ToLower(addr.Address), nil
}

// NewAssignment assigns a workout to a client.
type NewAssignment struct {
	WorkoutID     uuid.UUID  `json:"workout_id"`
	ClientID      uuid.UUID  `json:"client_id"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

func (in *NewAssignment) Validate() error {
	if in.WorkoutID == uuid.Nil || in.ClientID == uuid.Nil {
		return fmt.Errorf("workout_id and client_id are required: %w", ErrInvalid)
	}
	return nil
}

// StatusChange is the body of an assignment status update.
type StatusChange struct {
	Status string `json:"status"`
}
