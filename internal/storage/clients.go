package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, name, email, notes, is_active, created_at`

func scanClient(row pgx.Row) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Notes, &c.Active, &c.CreatedAt)
	return c, err
}

// ListClients returns the roster ordered by name. A non-nil active keeps
// only clients with that flag.
func (db *DB) ListClients(ctx context.Context, active *bool) ([]models.Client, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+clientColumns+` FROM clients
		WHERE $1::boolean IS NULL OR is_active = $1
		ORDER BY lower(name), id`, active)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	result := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetClient returns one client.
func (db *DB) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := scanClient(db.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying client: %w", err)
	}
	return &c, nil
}

// CreateClient adds an active client. Returns models.ErrConflict if the
// email is already on the roster.
func (db *DB) CreateClient(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := scanClient(db.Pool.QueryRow(ctx, `
		INSERT INTO clients (id, name, email, notes) VALUES ($1, $2, $3, $4)
		RETURNING `+clientColumns, uuid.New(), in.Name, in.Email, in.Notes))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("client with email %s already exists: %w", in.Email, models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting client: %w", err)
	}
	return &c, nil
}

// UpdateClient applies a patch to a client.
func (db *DB) UpdateClient(ctx context.Context, id uuid.UUID, p models.ClientPatch) (*models.Client, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, err := scanClient(db.Pool.QueryRow(ctx, `
		UPDATE clients SET
			name      = COALESCE($2, name),
			email     = COALESCE($3, email),
			notes     = COALESCE($4, notes),
			is_active = COALESCE($5, is_active)
		WHERE id = $1
		RETURNING `+clientColumns, id, p.Name, p.Email, p.Notes, p.Active))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("client with email %s already exists: %w", *p.Email, models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}
	return &c, nil
}

// DeleteClient removes a client together with their assignments and logs.
func (db *DB) DeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	return nil
}
