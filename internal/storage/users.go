package storage

import (
	"context"
	"fmt"
)

// TouchCaller records a caller by login name and returns its ID.
// Updates last_seen and display_name on each call.
func (db *DB) TouchCaller(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO callers (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), callers.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording caller %s: %w", login, err)
	}
	return id, nil
}
