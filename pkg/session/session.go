// Package session holds the explicit per-user state the presentation
// layer passes into and out of the core: prompt history and feedback.
// The core itself is stateless between calls; a Session value is owned
// by the caller and persisted through a Store.
package session

import (
	"time"

	"github.com/google/uuid"
)

// PromptKind distinguishes the two prompt surfaces.
type PromptKind string

const (
	KindQA    PromptKind = "qa"
	KindChart PromptKind = "chart"
)

// HistoryEntry is one prompt a user submitted, newest entries first when
// listed.
type HistoryEntry struct {
	ID        string     `json:"id"`
	Kind      PromptKind `json:"kind"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// FeedbackEntry records a user's rating of an answer or chart. Entries
// are keyed by a generated UUID rather than a hash of their content, so
// distinct submissions never collide.
type FeedbackEntry struct {
	ID        string     `json:"id"`
	Kind      PromptKind `json:"kind"`
	Text      string     `json:"text"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewID returns a collision-resistant identifier for entries and sessions.
func NewID() string {
	return uuid.NewString()
}

// NewHistoryEntry creates a history entry with a fresh ID and timestamp.
func NewHistoryEntry(kind PromptKind, text string) HistoryEntry {
	return HistoryEntry{
		ID:        NewID(),
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewFeedbackEntry creates a feedback entry with a fresh ID and timestamp.
func NewFeedbackEntry(kind PromptKind, text, value string) FeedbackEntry {
	return FeedbackEntry{
		ID:        NewID(),
		Kind:      kind,
		Text:      text,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
}
