package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazelrye/deepcuts/internal/session"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// SessionRepository implements [session.Store] backed by SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a SessionRepository with the given database
// connection. The sessions table must exist (shared.RunMigrations).
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves a session state by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.State, error) {
	query := `SELECT state FROM sessions WHERE id = ?`

	var raw string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	var state session.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}

	return &state, nil
}

// Put inserts or replaces the session state keyed by its id.
func (r *SessionRepository) Put(ctx context.Context, state *session.State) error {
	if state == nil || state.ID == "" {
		return fmt.Errorf("session state must carry an id")
	}

	state.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	query := `
		INSERT INTO sessions (id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, state.ID, string(raw), state.CreatedAt, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteIdle removes sessions whose last update is older than the cutoff and
// returns how many were removed. Called periodically by the server process.
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
