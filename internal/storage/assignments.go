package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check: DB can drive a workout session in-process.
var _ session.Backend = (*DB)(nil)

const summarySelect = `
	SELECT a.id, w.id, w.name, w.description, w.category, w.difficulty, w.duration_minutes,
	       (SELECT COUNT(*) FROM workout_exercises we WHERE we.workout_id = w.id),
	       a.status, a.assigned_date, a.scheduled_date, a.started_at, a.completed_at, a.notes,
	       (SELECT COUNT(*) FROM workout_logs l WHERE l.assignment_id = a.id)
	FROM workout_assignments a
	JOIN workouts w ON w.id = a.workout_id`

func scanSummary(row pgx.Row) (models.AssignmentSummary, error) {
	var s models.AssignmentSummary
	var status string
	err := row.Scan(&s.ID, &s.WorkoutID, &s.WorkoutName, &s.Description, &s.Category,
		&s.Difficulty, &s.DurationMinutes, &s.ExerciseCount, &status, &s.AssignedDate,
		&s.ScheduledDate, &s.StartedAt, &s.CompletedAt, &s.Notes, &s.LoggedSets)
	s.Status = models.AssignmentStatus(status)
	return s, err
}

// ListAssignments returns a client's assignments, newest first, with the
// number of exercises in each workout and the number of sets logged so far.
func (db *DB) ListAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error) {
	rows, err := db.Pool.Query(ctx, summarySelect+`
		WHERE a.client_id = $1
		ORDER BY a.assigned_date DESC, a.id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	result := []models.AssignmentSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateAssignment assigns a workout to a client as a pending assignment.
// Returns models.ErrNotFound if either the workout or the client is unknown.
func (db *DB) CreateAssignment(ctx context.Context, in models.NewAssignment) (*models.AssignmentSummary, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO workout_assignments (id, workout_id, client_id, scheduled_date, notes)
		VALUES ($1, $2, $3, $4, $5)`,
		id, in.WorkoutID, in.ClientID, in.ScheduledDate, in.Notes)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("workout or client not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting assignment: %w", err)
	}

	s, err := scanSummary(db.Pool.QueryRow(ctx, summarySelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reading new assignment: %w", err)
	}
	return &s, nil
}

// FetchAssignment returns an assignment with its exercises in workout order
// and every set logged against it.
func (db *DB) FetchAssignment(ctx context.Context, id uuid.UUID) (*models.AssignmentDetail, error) {
	var d models.AssignmentDetail
	var status string
	err := db.Pool.QueryRow(ctx, `
		SELECT a.id, w.id, w.name, w.description, w.category, w.difficulty, w.duration_minutes,
		       a.status, a.assigned_date, a.scheduled_date, a.started_at, a.completed_at, a.notes
		FROM workout_assignments a
		JOIN workouts w ON w.id = a.workout_id
		WHERE a.id = $1`, id).Scan(
		&d.ID, &d.WorkoutID, &d.WorkoutName, &d.Description, &d.Category, &d.Difficulty,
		&d.DurationMinutes, &status, &d.AssignedDate, &d.ScheduledDate, &d.StartedAt, &d.CompletedAt,
		&d.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying assignment: %w", err)
	}
	d.Status = models.AssignmentStatus(status)

	rows, err := db.Pool.Query(ctx, `
		SELECT we.id, e.id, e.name, e.body_part, e.equipment, e.target, e.gif_url,
		       we.sets, we.reps, we.weight, we.rest_seconds, we.notes, we.order_index
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = $1
		ORDER BY we.order_index, we.id`, d.WorkoutID)
	if err != nil {
		return nil, fmt.Errorf("querying assignment exercises: %w", err)
	}
	defer rows.Close()

	index := make(map[uuid.UUID]int)
	d.Exercises = []models.AssignmentExercise{}
	for rows.Next() {
		ex := models.AssignmentExercise{Logs: []models.SetRecord{}}
		if err := rows.Scan(&ex.ID, &ex.ExerciseID, &ex.Name, &ex.BodyPart, &ex.Equipment,
			&ex.Target, &ex.GifURL, &ex.Sets, &ex.Reps, &ex.Weight, &ex.RestSeconds,
			&ex.Notes, &ex.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning assignment exercise: %w", err)
		}
		index[ex.ID] = len(d.Exercises)
		d.Exercises = append(d.Exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logs, err := db.Pool.Query(ctx, `
		SELECT id, workout_exercise_id, set_number, reps_completed, weight_used, rpe, logged_at
		FROM workout_logs
		WHERE assignment_id = $1
		ORDER BY set_number, logged_at`, id)
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer logs.Close()

	for logs.Next() {
		var rec models.SetRecord
		var exID uuid.UUID
		if err := logs.Scan(&rec.ID, &exID, &rec.SetNumber, &rec.RepsCompleted, &rec.WeightUsed,
			&rec.RPE, &rec.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		if i, ok := index[exID]; ok {
			d.Exercises[i].Logs = append(d.Exercises[i].Logs, rec)
		}
	}
	return &d, logs.Err()
}

// StartAssignment moves a pending assignment to in_progress.
// Returns models.ErrConflict if it was already started.
func (db *DB) StartAssignment(ctx context.Context, id uuid.UUID) (*models.StartResult, error) {
	var res models.StartResult
	var status string
	err := db.Pool.QueryRow(ctx, `
		UPDATE workout_assignments
		SET status = 'in_progress', started_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, status, started_at`, id).Scan(&res.ID, &status, &res.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.missingOr(ctx, id, "assignment already started")
	}
	if err != nil {
		return nil, fmt.Errorf("starting assignment: %w", err)
	}
	res.Status = models.AssignmentStatus(status)
	return &res, nil
}

// LogSet records one set and starts the assignment if it was still pending.
// Returns models.ErrConflict if that set was already logged and
// models.ErrInvalid if the entry does not fit the prescription.
func (db *DB) LogSet(ctx context.Context, id uuid.UUID, entry models.SetEntry) (*models.SetRecord, error) {
	if entry.RepsCompleted < 0 || entry.WeightUsed < 0 {
		return nil, fmt.Errorf("reps and weight must not be negative: %w", models.ErrInvalid)
	}
	if entry.RPE != nil && (*entry.RPE < 1 || *entry.RPE > 10) {
		return nil, fmt.Errorf("rpe must be between 1 and 10: %w", models.ErrInvalid)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var status string
	var workoutID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT status, workout_id FROM workout_assignments WHERE id = $1 FOR UPDATE`,
		id).Scan(&status, &workoutID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("locking assignment: %w", err)
	}

	var sets int
	err = tx.QueryRow(ctx,
		`SELECT sets FROM workout_exercises WHERE id = $1 AND workout_id = $2`,
		entry.WorkoutExerciseID, workoutID).Scan(&sets)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("exercise %s is not part of this workout: %w", entry.WorkoutExerciseID, models.ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout exercise: %w", err)
	}
	if entry.SetNumber < 1 || entry.SetNumber > sets {
		return nil, fmt.Errorf("set %d outside 1..%d: %w", entry.SetNumber, sets, models.ErrInvalid)
	}

	rec := models.SetRecord{
		ID:            uuid.New(),
		SetNumber:     entry.SetNumber,
		RepsCompleted: entry.RepsCompleted,
		WeightUsed:    entry.WeightUsed,
		RPE:           entry.RPE,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO workout_logs (id, assignment_id, workout_exercise_id, set_number,
		                          reps_completed, weight_used, rpe, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (assignment_id, workout_exercise_id, set_number) DO NOTHING
		RETURNING logged_at`,
		rec.ID, id, entry.WorkoutExerciseID, entry.SetNumber, entry.RepsCompleted,
		entry.WeightUsed, entry.RPE, entry.Notes).Scan(&rec.LoggedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set %d already logged: %w", entry.SetNumber, models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting workout log: %w", err)
	}

	if models.AssignmentStatus(status) == models.StatusPending {
		if _, err := tx.Exec(ctx,
			`UPDATE workout_assignments SET status = 'in_progress', started_at = NOW() WHERE id = $1`,
			id); err != nil {
			return nil, fmt.Errorf("starting assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing workout log: %w", err)
	}
	return &rec, nil
}

// CompleteAssignment marks an assignment completed and records its duration
// in whole minutes since it was started.
// Returns models.ErrConflict if it was already completed.
func (db *DB) CompleteAssignment(ctx context.Context, id uuid.UUID) (*models.CompletionResult, error) {
	var res models.CompletionResult
	var status string
	err := db.Pool.QueryRow(ctx, `
		UPDATE workout_assignments
		SET status = 'completed',
		    completed_at = NOW(),
		    duration_minutes = CASE WHEN started_at IS NULL THEN NULL
		                            ELSE FLOOR(EXTRACT(EPOCH FROM NOW() - started_at) / 60)::int END
		WHERE id = $1 AND status <> 'completed'
		RETURNING id, status, completed_at, duration_minutes`, id).Scan(
		&res.ID, &status, &res.CompletedAt, &res.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.missingOr(ctx, id, "assignment already completed")
	}
	if err != nil {
		return nil, fmt.Errorf("completing assignment: %w", err)
	}
	res.Status = models.AssignmentStatus(status)
	return &res, nil
}

// SkipAssignment marks an open assignment skipped.
// Returns models.ErrConflict if it was already completed or skipped.
func (db *DB) SkipAssignment(ctx context.Context, id uuid.UUID) (*models.SkipResult, error) {
	var res models.SkipResult
	var status string
	err := db.Pool.QueryRow(ctx, `
		UPDATE workout_assignments
		SET status = 'skipped'
		WHERE id = $1 AND status IN ('pending', 'in_progress')
		RETURNING id, status`, id).Scan(&res.ID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.missingOr(ctx, id, "assignment already closed")
	}
	if err != nil {
		return nil, fmt.Errorf("skipping assignment: %w", err)
	}
	res.Status = models.AssignmentStatus(status)
	return &res, nil
}

// missingOr distinguishes an unknown assignment from one whose state refused
// a guarded update.
func (db *DB) missingOr(ctx context.Context, id uuid.UUID, conflict string) error {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workout_assignments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking assignment: %w", err)
	}
	if !exists {
		return fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", conflict, models.ErrConflict)
}
