package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/storage"
)

const defaultRestSeconds = 60

// Sink receives seeded rows. Each insert reports false for a row that
// already exists.
type Sink interface {
	InsertExercise(ctx context.Context, row models.ExerciseRow) (bool, error)
	InsertWorkout(ctx context.Context, row models.WorkoutRow, exercises []models.WorkoutExerciseRow) (bool, error)
	InsertClient(ctx context.Context, row models.ClientRow) (bool, error)
	InsertAssignment(ctx context.Context, row models.AssignmentRow) (bool, error)
}

var _ Sink = (*storage.DB)(nil)

// Stats tracks seeding progress.
type Stats struct {
	ExercisesInserted     int
	ExercisesExisting     int
	WorkoutsInserted      int
	WorkoutsExisting      int
	ClientsInserted       int
	ClientsExisting       int
	AssignmentsInserted   int
	AssignmentsExisting   int
	WorkoutExercisesTotal int
}

// Seeder writes a validated plan to a Sink.
type Seeder struct {
	sink   Sink
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a Seeder. In dry-run mode nothing is written and every row is
// counted as inserted; sink may be nil then.
func New(sink Sink, log *slog.Logger, dryRun bool) *Seeder {
	return &Seeder{sink: sink, log: log, dryRun: dryRun}
}

// Seed inserts the plan in dependency order: exercises, workouts, clients,
// then assignments.
func (s *Seeder) Seed(ctx context.Context, p *Plan) (*Stats, error) {
	for _, e := range p.Exercises {
		row := models.ExerciseRow{
			ID:        ExerciseID(e.Key),
			Name:      e.Name,
			BodyPart:  e.BodyPart,
			Equipment: e.Equipment,
			Target:    e.Target,
			GifURL:    e.GifURL,
		}
		inserted, err := s.insert(func() (bool, error) { return s.sink.InsertExercise(ctx, row) })
		if err != nil {
			return &s.stats, fmt.Errorf("exercise %s: %w", e.Key, err)
		}
		count(inserted, &s.stats.ExercisesInserted, &s.stats.ExercisesExisting)
	}

	for _, w := range p.Workouts {
		row, exercises := workoutRows(w)
		s.stats.WorkoutExercisesTotal += len(exercises)
		inserted, err := s.insert(func() (bool, error) { return s.sink.InsertWorkout(ctx, row, exercises) })
		if err != nil {
			return &s.stats, fmt.Errorf("workout %s: %w", w.Key, err)
		}
		if !inserted {
			s.log.Info("workout already seeded", "workout", w.Key)
		}
		count(inserted, &s.stats.WorkoutsInserted, &s.stats.WorkoutsExisting)
	}

	for _, c := range p.Clients {
		row := models.ClientRow{ID: ClientID(c.Key), Name: c.Name, Email: c.Email}
		inserted, err := s.insert(func() (bool, error) { return s.sink.InsertClient(ctx, row) })
		if err != nil {
			return &s.stats, fmt.Errorf("client %s: %w", c.Key, err)
		}
		count(inserted, &s.stats.ClientsInserted, &s.stats.ClientsExisting)
	}

	for i, a := range p.Assignments {
		row, err := assignmentRow(a, i)
		if err != nil {
			return &s.stats, err
		}
		inserted, err := s.insert(func() (bool, error) { return s.sink.InsertAssignment(ctx, row) })
		if err != nil {
			return &s.stats, fmt.Errorf("assignment %d (%s for %s): %w", i, a.Workout, a.Client, err)
		}
		count(inserted, &s.stats.AssignmentsInserted, &s.stats.AssignmentsExisting)
	}

	return &s.stats, nil
}

func (s *Seeder) insert(fn func() (bool, error)) (bool, error) {
	if s.dryRun {
		return true, nil
	}
	return fn()
}

func count(inserted bool, ins, existing *int) {
	if inserted {
		*ins++
	} else {
		*existing++
	}
}

func workoutRows(w Workout) (models.WorkoutRow, []models.WorkoutExerciseRow) {
	row := models.WorkoutRow{
		ID:              WorkoutID(w.Key),
		Name:            w.Name,
		Description:     w.Description,
		Category:        w.Category,
		Difficulty:      w.Difficulty,
		DurationMinutes: w.DurationMinutes,
	}
	exercises := make([]models.WorkoutExerciseRow, 0, len(w.Exercises))
	for i, we := range w.Exercises {
		rest := defaultRestSeconds
		if we.RestSeconds != nil {
			rest = *we.RestSeconds
		}
		exercises = append(exercises, models.WorkoutExerciseRow{
			ID:          workoutExerciseID(w.Key, i),
			WorkoutID:   row.ID,
			ExerciseID:  ExerciseID(we.Exercise),
			OrderIndex:  i,
			Sets:        we.Sets,
			Reps:        we.Reps,
			Weight:      we.Weight,
			RestSeconds: rest,
			Notes:       we.Notes,
		})
	}
	return row, exercises
}

func assignmentRow(a Assignment, index int) (models.AssignmentRow, error) {
	row := models.AssignmentRow{
		ID:        assignmentID(a, index),
		WorkoutID: WorkoutID(a.Workout),
		ClientID:  ClientID(a.Client),
		Status:    models.StatusPending,
	}
	if a.Status != "" {
		row.Status, _ = models.NormalizeStatus(a.Status)
	}
	if a.Scheduled != "" {
		d, err := time.Parse(time.DateOnly, a.Scheduled)
		if err != nil {
			return row, fmt.Errorf("assignment %d: %w", index, err)
		}
		row.ScheduledDate = &d
	}
	return row, nil
}
