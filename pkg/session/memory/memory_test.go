package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/figaro-dev/figaro/pkg/session"
)

func TestHistoryNewestFirst(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if err := s.AppendHistory(ctx, "sess", session.NewHistoryEntry(session.KindChart, text)); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	history, err := s.ListHistory(ctx, "sess")
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i, want := range []string{"third", "second", "first"} {
		if history[i].Text != want {
			t.Errorf("history[%d].Text = %q, want %q", i, history[i].Text, want)
		}
	}
}

func TestHistorySkipsDuplicates(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	e := session.NewHistoryEntry(session.KindQA, "total revenue?")
	if err := s.AppendHistory(ctx, "sess", e); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	// Same kind and text, different ID.
	if err := s.AppendHistory(ctx, "sess", session.NewHistoryEntry(session.KindQA, "total revenue?")); err != nil {
		t.Fatalf("AppendHistory duplicate: %v", err)
	}
	// Same text under the other kind is a distinct prompt.
	if err := s.AppendHistory(ctx, "sess", session.NewHistoryEntry(session.KindChart, "total revenue?")); err != nil {
		t.Fatalf("AppendHistory other kind: %v", err)
	}

	history, err := s.ListHistory(ctx, "sess")
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2", len(history))
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	s := New(0)
	history, err := s.ListHistory(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}

func TestFeedback(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	first := session.NewFeedbackEntry(session.KindChart, "bar chart", "useful")
	second := session.NewFeedbackEntry(session.KindChart, "bar chart", "useful")
	if first.ID == second.ID {
		t.Fatal("identical submissions must receive distinct IDs")
	}

	if err := s.AddFeedback(ctx, "sess", first); err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if err := s.AddFeedback(ctx, "sess", second); err != nil {
		t.Fatalf("AddFeedback second: %v", err)
	}

	feedback, err := s.ListFeedback(ctx, "sess")
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(feedback) != 2 {
		t.Fatalf("len(feedback) = %d, want 2", len(feedback))
	}
	if feedback[0].ID != second.ID {
		t.Errorf("feedback[0].ID = %q, want newest entry %q", feedback[0].ID, second.ID)
	}
}

func TestFeedbackConflictOnSameID(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	e := session.NewFeedbackEntry(session.KindQA, "answer", "good")
	if err := s.AddFeedback(ctx, "sess", e); err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if err := s.AddFeedback(ctx, "sess", e); !errors.Is(err, session.ErrConflict) {
		t.Errorf("replayed entry: err = %v, want ErrConflict", err)
	}
}

func TestEviction(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := s.AppendHistory(ctx, id, session.NewHistoryEntry(session.KindChart, "q for "+id)); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	// Touch "a" so "b" becomes least recently used.
	if err := s.AppendHistory(ctx, "a", session.NewHistoryEntry(session.KindChart, "again")); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := s.AppendHistory(ctx, "c", session.NewHistoryEntry(session.KindChart, "q for c")); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	if h, _ := s.ListHistory(ctx, "b"); len(h) != 0 {
		t.Errorf("session b should have been evicted, got %d entries", len(h))
	}
	if h, _ := s.ListHistory(ctx, "a"); len(h) != 2 {
		t.Errorf("session a: len(history) = %d, want 2", len(h))
	}
	if h, _ := s.ListHistory(ctx, "c"); len(h) != 1 {
		t.Errorf("session c: len(history) = %d, want 1", len(h))
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessionID := fmt.Sprintf("sess-%d", i%2)
			for j := range 20 {
				text := fmt.Sprintf("prompt %d-%d", i, j)
				if err := s.AppendHistory(ctx, sessionID, session.NewHistoryEntry(session.KindQA, text)); err != nil {
					t.Errorf("AppendHistory: %v", err)
				}
				if _, err := s.ListHistory(ctx, sessionID); err != nil {
					t.Errorf("ListHistory: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	a, _ := s.ListHistory(ctx, "sess-0")
	b, _ := s.ListHistory(ctx, "sess-1")
	if len(a)+len(b) != 160 {
		t.Errorf("total entries = %d, want 160", len(a)+len(b))
	}
}
