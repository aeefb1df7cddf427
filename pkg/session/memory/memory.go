// Package memory provides an in-memory session.Store for testing and
// lightweight deployments. Sessions are lost when the process restarts.
// Optional LRU eviction limits memory usage.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/figaro-dev/figaro/pkg/session"
)

// entry holds one session's state.
type entry struct {
	history  []session.HistoryEntry
	feedback []session.FeedbackEntry
	lruElem  *list.Element // position in LRU list
}

// Store is an in-memory session store with optional LRU eviction.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lruList *list.List // front = most recently used, back = least recently used
	maxSize int        // 0 = unlimited
}

// Ensure Store implements session.Store at compile time.
var _ session.Store = (*Store)(nil)

// New creates a new in-memory store. If maxSize is 0, the store grows
// without limit. If maxSize > 0, the least recently used session is
// evicted when the limit is reached.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// AppendHistory records a prompt, skipping exact kind+text duplicates.
func (s *Store) AppendHistory(_ context.Context, sessionID string, e session.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(sessionID)
	for _, existing := range sess.history {
		if existing.Kind == e.Kind && existing.Text == e.Text {
			return nil
		}
	}
	sess.history = append(sess.history, e)
	return nil
}

// ListHistory returns prompts newest first.
func (s *Store) ListHistory(_ context.Context, sessionID string) ([]session.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]session.HistoryEntry, len(sess.history))
	for i, e := range sess.history {
		out[len(out)-1-i] = e
	}
	return out, nil
}

// AddFeedback records a rating.
func (s *Store) AddFeedback(_ context.Context, sessionID string, e session.FeedbackEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(sessionID)
	for _, existing := range sess.feedback {
		if existing.ID == e.ID {
			return session.ErrConflict
		}
	}
	sess.feedback = append(sess.feedback, e)
	return nil
}

// ListFeedback returns feedback newest first.
func (s *Store) ListFeedback(_ context.Context, sessionID string) ([]session.FeedbackEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]session.FeedbackEntry, len(sess.feedback))
	for i, e := range sess.feedback {
		out[len(out)-1-i] = e
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// touch returns the session entry, creating it (with eviction) when
// absent and marking it most recently used. Caller holds the write lock.
func (s *Store) touch(sessionID string) *entry {
	if sess, ok := s.entries[sessionID]; ok {
		s.lruList.MoveToFront(sess.lruElem)
		return sess
	}

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	sess := &entry{}
	sess.lruElem = s.lruList.PushFront(sessionID)
	s.entries[sessionID] = sess
	return sess
}

// evictOldest removes the least recently used session. Caller holds the
// write lock.
func (s *Store) evictOldest() {
	oldest := s.lruList.Back()
	if oldest == nil {
		return
	}
	s.lruList.Remove(oldest)
	delete(s.entries, oldest.Value.(string))
}
