package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, name, body_part, equipment, target, gif_url, instructions, is_custom`

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var e models.Exercise
	var instructions string
	if err := row.Scan(&e.ID, &e.Name, &e.BodyPart, &e.Equipment, &e.Target, &e.GifURL,
		&instructions, &e.Custom); err != nil {
		return e, err
	}
	e.Instructions = splitInstructions(instructions)
	return e, nil
}

// Instructions are stored one step per line.
func splitInstructions(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// ListExercises searches the exercise library. All filters combine.
func (db *DB) ListExercises(ctx context.Context, q models.ExerciseQuery) ([]models.Exercise, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	var conds []string
	var args []any
	where := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.Search != "" {
		where("lower(name) LIKE '%%' || lower($%d) || '%%'", q.Search)
	}
	if q.BodyPart != "" {
		where("lower(body_part) = lower($%d)", q.BodyPart)
	}
	if q.Target != "" {
		where("lower(target) = lower($%d)", q.Target)
	}
	if q.Equipment != "" {
		where("lower(equipment) = lower($%d)", q.Equipment)
	}

	sql := `SELECT ` + exerciseColumns + ` FROM exercises`
	if len(conds) > 0 {
		sql += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, q.Limit, q.Offset)
	sql += fmt.Sprintf(` ORDER BY lower(name), id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ExerciseFacets returns the distinct body parts, targets and equipment in
// the library, sorted.
func (db *DB) ExerciseFacets(ctx context.Context) (*models.ExerciseFacets, error) {
	var f models.ExerciseFacets
	for _, c := range []struct {
		column string
		dst    *[]string
	}{
		{"body_part", &f.BodyParts},
		{"target", &f.Targets},
		{"equipment", &f.Equipment},
	} {
		values, err := db.distinct(ctx, c.column)
		if err != nil {
			return nil, err
		}
		*c.dst = values
	}
	return &f, nil
}

// distinct lists the non-empty values of one exercises column. column is
// never user input.
func (db *DB) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT `+column+` FROM exercises WHERE `+column+` <> '' ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("querying %s values: %w", column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning %s values: %w", column, err)
	}
	return values, nil
}

// GetExercise returns one library entry.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	e, err := scanExercise(db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("exercise %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// CreateExercise adds a custom exercise to the library.
func (db *DB) CreateExercise(ctx context.Context, in models.NewExercise) (*models.Exercise, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e, err := scanExercise(db.Pool.QueryRow(ctx, `
		INSERT INTO exercises (id, name, body_part, equipment, target, gif_url, instructions, is_custom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING `+exerciseColumns,
		uuid.New(), in.Name, in.BodyPart, in.Equipment, in.Target, in.GifURL,
		strings.Join(in.Instructions, "\n")))
	if err != nil {
		return nil, fmt.Errorf("inserting exercise %s: %w", in.Name, err)
	}
	return &e, nil
}
