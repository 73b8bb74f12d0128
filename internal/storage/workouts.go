package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListWorkouts returns every workout template, newest first, with its
// exercises in order.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, description, category, difficulty, duration_minutes, created_at
		FROM workouts
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	result := []models.Workout{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		w := models.Workout{Exercises: []models.WorkoutExercise{}}
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Category, &w.Difficulty,
			&w.DurationMinutes, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		index[w.ID] = len(result)
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exercises, err := db.workoutExercises(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, we := range exercises {
		if i, ok := index[we.workoutID]; ok {
			result[i].Exercises = append(result[i].Exercises, we.WorkoutExercise)
		}
	}
	return result, nil
}

// GetWorkout returns one workout template with its exercises in order.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	w := models.Workout{Exercises: []models.WorkoutExercise{}}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, description, category, difficulty, duration_minutes, created_at
		FROM workouts WHERE id = $1`, id).Scan(
		&w.ID, &w.Name, &w.Description, &w.Category, &w.Difficulty, &w.DurationMinutes, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	exercises, err := db.workoutExercises(ctx, &id)
	if err != nil {
		return nil, err
	}
	for _, we := range exercises {
		w.Exercises = append(w.Exercises, we.WorkoutExercise)
	}
	return &w, nil
}

type workoutExerciseOf struct {
	workoutID uuid.UUID
	models.WorkoutExercise
}

// workoutExercises loads the exercises of one workout, or of all workouts
// when workoutID is nil.
func (db *DB) workoutExercises(ctx context.Context, workoutID *uuid.UUID) ([]workoutExerciseOf, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT we.workout_id, we.id, we.exercise_id, e.name, we.order_index, we.sets, we.reps,
		       we.weight, we.rest_seconds, we.notes
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE $1::uuid IS NULL OR we.workout_id = $1
		ORDER BY we.workout_id, we.order_index, we.id`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var result []workoutExerciseOf
	for rows.Next() {
		var we workoutExerciseOf
		if err := rows.Scan(&we.workoutID, &we.ID, &we.ExerciseID, &we.ExerciseName, &we.OrderIndex,
			&we.Sets, &we.Reps, &we.Weight, &we.RestSeconds, &we.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		result = append(result, we)
	}
	return result, rows.Err()
}

// CreateWorkout builds a workout template with its exercises in one
// transaction. Returns models.ErrInvalid if an exercise is not in the library.
func (db *DB) CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	id := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, name, description, category, difficulty, duration_minutes)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		id, in.Name, in.Description, in.Category, in.Difficulty, in.DurationMinutes); err != nil {
		return nil, fmt.Errorf("inserting workout %s: %w", in.Name, err)
	}
	if err := insertExerciseInputs(ctx, tx, id, in.Exercises); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing workout: %w", err)
	}
	return db.GetWorkout(ctx, id)
}

// UpdateWorkout applies a patch. Replacing the exercise list is refused with
// models.ErrConflict once sets have been logged against the workout, since
// those logs reference the current exercises.
func (db *DB) UpdateWorkout(ctx context.Context, id uuid.UUID, p models.WorkoutPatch) (*models.Workout, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE workouts SET
			name             = COALESCE($2, name),
			description      = COALESCE($3, description),
			category         = COALESCE($4, category),
			difficulty       = COALESCE($5, difficulty),
			duration_minutes = COALESCE($6, duration_minutes)
		WHERE id = $1`,
		id, p.Name, p.Description, p.Category, p.Difficulty, p.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}

	if p.Exercises != nil {
		var logged bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM workout_logs l
				JOIN workout_exercises we ON we.id = l.workout_exercise_id
				WHERE we.workout_id = $1)`, id).Scan(&logged); err != nil {
			return nil, fmt.Errorf("checking logged sets: %w", err)
		}
		if logged {
			return nil, fmt.Errorf("workout has logged sets, its exercises cannot be replaced: %w", models.ErrConflict)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clearing workout exercises: %w", err)
		}
		if err := insertExerciseInputs(ctx, tx, id, p.Exercises); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing workout: %w", err)
	}
	return db.GetWorkout(ctx, id)
}

// DeleteWorkout removes a workout template. Workouts that have been assigned
// are kept and models.ErrConflict is returned.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM workouts
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM workout_assignments WHERE workout_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workouts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking workout: %w", err)
	}
	if !exists {
		return fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	return fmt.Errorf("workout has assignments: %w", models.ErrConflict)
}

func insertExerciseInputs(ctx context.Context, tx pgx.Tx, workoutID uuid.UUID, items []models.WorkoutExerciseInput) error {
	for i, it := range items {
		row := models.WorkoutExerciseRow{
			ID:          uuid.New(),
			WorkoutID:   workoutID,
			ExerciseID:  it.ExerciseID,
			OrderIndex:  *it.OrderIndex,
			Sets:        it.Sets,
			Reps:        it.Reps,
			Weight:      it.Weight,
			RestSeconds: *it.RestSeconds,
			Notes:       it.Notes,
		}
		err := insertWorkoutExercise(ctx, tx, row)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("exercise %d: %s is not in the library: %w", i+1, it.ExerciseID, models.ErrInvalid)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func insertWorkoutExercise(ctx context.Context, tx pgx.Tx, we models.WorkoutExerciseRow) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO workout_exercises (id, workout_id, exercise_id, order_index, sets, reps,
		 weight, rest_seconds, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		we.ID, we.WorkoutID, we.ExerciseID, we.OrderIndex, we.Sets, we.Reps,
		we.Weight, we.RestSeconds, we.Notes)
	if err != nil {
		return fmt.Errorf("inserting workout exercise %d: %w", we.OrderIndex, err)
	}
	return nil
}
