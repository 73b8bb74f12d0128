package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

type fakeSink struct {
	seen        map[uuid.UUID]bool
	workoutRows map[uuid.UUID][]models.WorkoutExerciseRow
	assignments []models.AssignmentRow
	failOn      string
}

func newFakeSink() *fakeSink {
	return &fakeSink{seen: map[uuid.UUID]bool{}, workoutRows: map[uuid.UUID][]models.WorkoutExerciseRow{}}
}

func (f *fakeSink) mark(id uuid.UUID) bool {
	if f.seen[id] {
		return false
	}
	f.seen[id] = true
	return true
}

func (f *fakeSink) InsertExercise(_ context.Context, row models.ExerciseRow) (bool, error) {
	if f.failOn == "exercise" {
		return false, errors.New("insert failed")
	}
	return f.mark(row.ID), nil
}

func (f *fakeSink) InsertWorkout(_ context.Context, row models.WorkoutRow, exercises []models.WorkoutExerciseRow) (bool, error) {
	f.workoutRows[row.ID] = exercises
	return f.mark(row.ID), nil
}

func (f *fakeSink) InsertClient(_ context.Context, row models.ClientRow) (bool, error) {
	return f.mark(row.ID), nil
}

func (f *fakeSink) InsertAssignment(_ context.Context, row models.AssignmentRow) (bool, error) {
	f.assignments = append(f.assignments, row)
	return f.mark(row.ID), nil
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// TestLoadExamplePlan verifies the bundled example plan is valid.
func TestLoadExamplePlan(t *testing.T) {
	p, err := Load("../../plans/example.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exercises) != 4 || len(p.Workouts) != 2 || len(p.Clients) != 1 || len(p.Assignments) != 2 {
		t.Errorf("plan counts = %d/%d/%d/%d", len(p.Exercises), len(p.Workouts), len(p.Clients), len(p.Assignments))
	}
}

// TestValidateReportsEveryProblem verifies range and reference checks are all
// reported together.
func TestValidateReportsEveryProblem(t *testing.T) {
	yaml := `
exercises:
  - key: bench
    name: Bench
workouts:
  - key: w
    name: W
    exercises:
      - exercise: bench
        sets: 11
        reps: 0
        rest_seconds: -5
      - exercise: nope
        sets: 3
        reps: 10
clients:
  - key: ana
    name: Ana
    email: ana@example.com
assignments:
  - client: bob
    workout: w
    scheduled: "02/03/2026"
    status: exploded
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"sets 11 outside 1..10",
		"reps 0 outside 1..100",
		"rest_seconds must not be negative",
		`unknown exercise "nope"`,
		`unknown client "bob"`,
		"scheduled must be YYYY-MM-DD",
		`unknown status "exploded"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

// TestParseRejectsUnknownFields verifies typos in plan files are caught.
func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("exercises:\n  - key: a\n    name: A\n    bodypart: chest\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

// TestSeedIsIdempotent verifies a second run finds every row already present
// because IDs derive from plan keys.
func TestSeedIsIdempotent(t *testing.T) {
	p, err := Load("../../plans/example.yaml")
	if err != nil {
		t.Fatal(err)
	}
	sink := newFakeSink()

	first, err := New(sink, quietLog(), false).Seed(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if first.ExercisesInserted != 4 || first.WorkoutsInserted != 2 || first.ClientsInserted != 1 || first.AssignmentsInserted != 2 {
		t.Errorf("first run = %+v", first)
	}
	if first.WorkoutExercisesTotal != 4 {
		t.Errorf("workout exercises = %d, want 4", first.WorkoutExercisesTotal)
	}

	second, err := New(sink, quietLog(), false).Seed(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if second.ExercisesExisting != 4 || second.WorkoutsExisting != 2 || second.ClientsExisting != 1 || second.AssignmentsExisting != 2 {
		t.Errorf("second run = %+v", second)
	}
}

// TestSeedRows verifies defaults and references in the generated rows.
func TestSeedRows(t *testing.T) {
	p, err := Parse([]byte(`
exercises:
  - {key: row, name: Row}
workouts:
  - key: pull
    name: Pull
    exercises:
      - {exercise: row, sets: 3, reps: 10}
clients:
  - {key: ana, name: Ana, email: ana@example.com}
assignments:
  - {client: ana, workout: pull, scheduled: 2026-03-02, status: started}
`))
	if err != nil {
		t.Fatal(err)
	}
	sink := newFakeSink()
	if _, err := New(sink, quietLog(), false).Seed(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	rows := sink.workoutRows[WorkoutID("pull")]
	if len(rows) != 1 || rows[0].RestSeconds != 60 || rows[0].ExerciseID != ExerciseID("row") || rows[0].OrderIndex != 0 {
		t.Errorf("workout rows = %+v", rows)
	}
	a := sink.assignments[0]
	if a.ClientID != ClientID("ana") || a.Status != models.StatusInProgress || a.ScheduledDate == nil || a.ScheduledDate.Day() != 2 {
		t.Errorf("assignment = %+v", a)
	}
}

// TestSeedDryRun verifies nothing reaches the sink in dry-run mode.
func TestSeedDryRun(t *testing.T) {
	p, err := Load("../../plans/example.yaml")
	if err != nil {
		t.Fatal(err)
	}
	stats, err := New(nil, quietLog(), true).Seed(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if stats.AssignmentsInserted != 2 {
		t.Errorf("dry-run assignments = %d, want 2", stats.AssignmentsInserted)
	}
}

// TestSeedStopsOnError verifies the first failing insert aborts the run.
func TestSeedStopsOnError(t *testing.T) {
	p, err := Load("../../plans/example.yaml")
	if err != nil {
		t.Fatal(err)
	}
	sink := newFakeSink()
	sink.failOn = "exercise"
	if _, err := New(sink, quietLog(), false).Seed(context.Background(), p); err == nil {
		t.Fatal("expected error")
	}
	if len(sink.assignments) != 0 {
		t.Errorf("assignments inserted after failure: %d", len(sink.assignments))
	}
}
