// Package seed loads coaching plans (exercises, workouts, clients and
// assignments) from YAML and writes them to the database.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// namespace keys the deterministic row IDs, so re-seeding the same plan
// finds the existing rows instead of duplicating them.
var namespace = uuid.MustParse("5f0c6a58-3f2e-4d8b-9c61-0b7f3f2d6e11")

type Plan struct {
	Exercises   []Exercise   `yaml:"exercises"`
	Workouts    []Workout    `yaml:"workouts"`
	Clients     []Client     `yaml:"clients"`
	Assignments []Assignment `yaml:"assignments"`
}

type Exercise struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	BodyPart  string `yaml:"body_part"`
	Equipment string `yaml:"equipment"`
	Target    string `yaml:"target"`
	GifURL    string `yaml:"gif_url"`
}

type Workout struct {
	Key             string            `yaml:"key"`
	Name            string            `yaml:"name"`
	Description     string            `yaml:"description"`
	Category        string            `yaml:"category"`
	Difficulty      string            `yaml:"difficulty"`
	DurationMinutes *int              `yaml:"duration_minutes"`
	Exercises       []WorkoutExercise `yaml:"exercises"`
}

// WorkoutExercise prescribes one exercise inside a workout. RestSeconds
// defaults to 60 when omitted.
type WorkoutExercise struct {
	Exercise    string   `yaml:"exercise"`
	Sets        int      `yaml:"sets"`
	Reps        int      `yaml:"reps"`
	Weight      *float64 `yaml:"weight"`
	RestSeconds *int     `yaml:"rest_seconds"`
	Notes       string   `yaml:"notes"`
}

type Client struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Assignment struct {
	Client    string `yaml:"client"`
	Workout   string `yaml:"workout"`
	Scheduled string `yaml:"scheduled"`
	Status    string `yaml:"status"`
}

// Load reads and validates a plan file. Unknown fields are rejected.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan validation: %w", err)
	}
	return &p, nil
}

// Validate reports every problem in the plan, not just the first.
func (p *Plan) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	exercises := map[string]bool{}
	for i, e := range p.Exercises {
		switch {
		case e.Key == "":
			add("exercises[%d]: key is required", i)
		case exercises[e.Key]:
			add("exercises[%d]: duplicate key %q", i, e.Key)
		}
		if e.Name == "" {
			add("exercises[%d]: name is required", i)
		}
		exercises[e.Key] = true
	}

	workouts := map[string]bool{}
	for i, w := range p.Workouts {
		switch {
		case w.Key == "":
			add("workouts[%d]: key is required", i)
		case workouts[w.Key]:
			add("workouts[%d]: duplicate key %q", i, w.Key)
		}
		workouts[w.Key] = true
		if w.Name == "" {
			add("workouts[%d]: name is required", i)
		}
		if w.DurationMinutes != nil && *w.DurationMinutes <= 0 {
			add("workouts[%d]: duration_minutes must be positive", i)
		}
		if len(w.Exercises) == 0 {
			add("workouts[%d]: at least one exercise is required", i)
		}
		for j, we := range w.Exercises {
			if !exercises[we.Exercise] {
				add("workouts[%d].exercises[%d]: unknown exercise %q", i, j, we.Exercise)
			}
			if we.Sets < models.MinSets || we.Sets > models.MaxSets {
				add("workouts[%d].exercises[%d]: sets %d outside %d..%d", i, j, we.Sets, models.MinSets, models.MaxSets)
			}
			if we.Reps < models.MinReps || we.Reps > models.MaxReps {
				add("workouts[%d].exercises[%d]: reps %d outside %d..%d", i, j, we.Reps, models.MinReps, models.MaxReps)
			}
			if we.Weight != nil && *we.Weight < 0 {
				add("workouts[%d].exercises[%d]: weight must not be negative", i, j)
			}
			if we.RestSeconds != nil && *we.RestSeconds < 0 {
				add("workouts[%d].exercises[%d]: rest_seconds must not be negative", i, j)
			}
		}
	}

	clients := map[string]bool{}
	emails := map[string]bool{}
	for i, c := range p.Clients {
		switch {
		case c.Key == "":
			add("clients[%d]: key is required", i)
		case clients[c.Key]:
			add("clients[%d]: duplicate key %q", i, c.Key)
		}
		clients[c.Key] = true
		if c.Name == "" {
			add("clients[%d]: name is required", i)
		}
		switch {
		case c.Email == "":
			add("clients[%d]: email is required", i)
		case emails[c.Email]:
			add("clients[%d]: duplicate email %q", i, c.Email)
		}
		emails[c.Email] = true
	}

	for i, a := range p.Assignments {
		if !clients[a.Client] {
			add("assignments[%d]: unknown client %q", i, a.Client)
		}
		if !workouts[a.Workout] {
			add("assignments[%d]: unknown workout %q", i, a.Workout)
		}
		if a.Scheduled != "" {
			if _, err := time.Parse(time.DateOnly, a.Scheduled); err != nil {
				add("assignments[%d]: scheduled must be YYYY-MM-DD: %v", i, err)
			}
		}
		if a.Status != "" {
			if _, ok := models.NormalizeStatus(a.Status); !ok {
				add("assignments[%d]: unknown status %q", i, a.Status)
			}
		}
	}

	return errors.Join(errs...)
}

func rowID(kind, key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(kind+":"+key))
}

// ExerciseID is the stable ID of the exercise with the given plan key.
func ExerciseID(key string) uuid.UUID { return rowID("exercise", key) }

// WorkoutID is the stable ID of the workout with the given plan key.
func WorkoutID(key string) uuid.UUID { return rowID("workout", key) }

// ClientID is the stable ID of the client with the given plan key.
func ClientID(key string) uuid.UUID { return rowID("client", key) }

func workoutExerciseID(workoutKey string, index int) uuid.UUID {
	return rowID("workout_exercise", fmt.Sprintf("%s#%d", workoutKey, index))
}

func assignmentID(a Assignment, index int) uuid.UUID {
	return rowID("assignment", fmt.Sprintf("%s/%s/%s#%d", a.Client, a.Workout, a.Scheduled, index))
}
