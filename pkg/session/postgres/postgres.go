// Package postgres provides a PostgreSQL implementation of session.Store.
// It uses pgx/v5 for connection pooling. History duplicates are absorbed
// by a unique constraint instead of a read-modify-write cycle.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/figaro-dev/figaro/pkg/session"
)

// Store is a PostgreSQL-backed session store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements session.Store at compile time.
var _ session.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// AppendHistory records a prompt. Exact kind+text duplicates within a
// session are absorbed by the unique constraint.
func (s *Store) AppendHistory(ctx context.Context, sessionID string, e session.HistoryEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO prompt_history (id, session_id, kind, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, kind, text) DO NOTHING
	`, e.ID, sessionID, string(e.Kind), e.Text, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// ListHistory returns prompts newest first.
func (s *Store) ListHistory(ctx context.Context, sessionID string) ([]session.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, text, created_at
		FROM prompt_history
		WHERE session_id = $1
		ORDER BY created_at DESC, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []session.HistoryEntry
	for rows.Next() {
		var e session.HistoryEntry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Kind = session.PromptKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddFeedback records a rating.
func (s *Store) AddFeedback(ctx context.Context, sessionID string, e session.FeedbackEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback (id, session_id, kind, text, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, sessionID, string(e.Kind), e.Text, e.Value, e.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return session.ErrConflict
		}
		return fmt.Errorf("inserting feedback entry: %w", err)
	}
	return nil
}

// ListFeedback returns feedback newest first.
func (s *Store) ListFeedback(ctx context.Context, sessionID string) ([]session.FeedbackEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, text, value, created_at
		FROM feedback
		WHERE session_id = $1
		ORDER BY created_at DESC, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var out []session.FeedbackEntry
	for rows.Next() {
		var e session.FeedbackEntry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Text, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback entry: %w", err)
		}
		e.Kind = session.PromptKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
