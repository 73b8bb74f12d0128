package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/fitcoach/internal/models"
)

// InsertExercise inserts an exercise library row. Returns true if inserted, false if duplicate.
func (db *DB) InsertExercise(ctx context.Context, row models.ExerciseRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, body_part, equipment, target, gif_url)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.Name, row.BodyPart, row.Equipment, row.Target, row.GifURL)
	if err != nil {
		return false, fmt.Errorf("inserting exercise %s: %w", row.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertWorkout inserts a workout together with its ordered exercises in one
// transaction. Returns true if inserted, false if the workout already existed.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow, exercises []models.WorkoutExerciseRow) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, name, description, category, difficulty, duration_minutes)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.Name, row.Description, row.Category, row.Difficulty, row.DurationMinutes)
	if err != nil {
		return false, fmt.Errorf("inserting workout %s: %w", row.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, we := range exercises {
		we.WorkoutID = row.ID
		if err := insertWorkoutExercise(ctx, tx, we); err != nil {
			return false, fmt.Errorf("workout %s: %w", row.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing workout: %w", err)
	}
	return true, nil
}

// InsertClient inserts a client row. Returns true if inserted, false if duplicate.
func (db *DB) InsertClient(ctx context.Context, row models.ClientRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO clients (id, name, email) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
		row.ID, row.Name, row.Email)
	if err != nil {
		return false, fmt.Errorf("inserting client %s: %w", row.Email, err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertAssignment assigns a workout to a client. Returns true if inserted, false if duplicate.
// A zero AssignedDate is stored as now.
func (db *DB) InsertAssignment(ctx context.Context, row models.AssignmentRow) (bool, error) {
	assigned := row.AssignedDate
	if assigned.IsZero() {
		assigned = time.Now().UTC()
	}
	status := row.Status
	if status == "" {
		status = models.StatusPending
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_assignments (id, workout_id, client_id, assigned_date, scheduled_date, status)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.WorkoutID, row.ClientID, assigned, row.ScheduledDate, string(status))
	if err != nil {
		return false, fmt.Errorf("inserting assignment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
