package authstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLite persists the token in dir/state.db so a login survives restarts.
type SQLite struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
}

// Compile-time check: SQLite satisfies Store.
var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the state database at dir/state.db.
// Call Hydrate to load a previously stored token.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS auth_token (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		token      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating auth_token table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SQLite) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO auth_token (id, token, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)`,
		token,
	)
	if err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_token`); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Hydrate(ctx context.Context) error {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM auth_token WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		token = ""
	} else if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Close closes the state database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
