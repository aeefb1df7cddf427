package session

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates the session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrConflict indicates an entry with the same ID already exists.
	ErrConflict = errors.New("entry already exists")
)

// Store persists per-session history and feedback. Implementations must
// be safe for concurrent use.
type Store interface {
	// AppendHistory records a submitted prompt. A prompt whose kind and
	// text match an existing entry in the session is skipped silently,
	// matching the presentation layer's no-duplicate behavior.
	AppendHistory(ctx context.Context, sessionID string, e HistoryEntry) error

	// ListHistory returns the session's prompts, newest first. An unknown
	// session yields an empty list, not an error.
	ListHistory(ctx context.Context, sessionID string) ([]HistoryEntry, error)

	// AddFeedback records a rating.
	AddFeedback(ctx context.Context, sessionID string, e FeedbackEntry) error

	// ListFeedback returns the session's feedback, newest first.
	ListFeedback(ctx context.Context, sessionID string) ([]FeedbackEntry, error)

	// Close releases store resources.
	Close() error
}
