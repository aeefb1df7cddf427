package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/figaro-dev/figaro/pkg/session"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if a container runtime is not available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("figaro_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func uniqueSession(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestPostgres_HistoryRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sessionID := uniqueSession("sess_hist")

	first := session.NewHistoryEntry(session.KindChart, "show revenue by product")
	second := session.NewHistoryEntry(session.KindQA, "what is the total revenue?")
	// Keep ordering stable under timestamp resolution limits.
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)

	if err := store.AppendHistory(ctx, sessionID, first); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if err := store.AppendHistory(ctx, sessionID, second); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	got, err := store.ListHistory(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("history[0].ID = %q, want newest entry %q", got[0].ID, second.ID)
	}
	if got[0].Kind != session.KindQA {
		t.Errorf("history[0].Kind = %q, want %q", got[0].Kind, session.KindQA)
	}
	if got[1].Text != "show revenue by product" {
		t.Errorf("history[1].Text = %q", got[1].Text)
	}
}

func TestPostgres_HistoryDuplicateAbsorbed(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sessionID := uniqueSession("sess_dup")

	if err := store.AppendHistory(ctx, sessionID, session.NewHistoryEntry(session.KindQA, "same prompt")); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	// Same kind and text with a fresh ID hits the unique constraint.
	if err := store.AppendHistory(ctx, sessionID, session.NewHistoryEntry(session.KindQA, "same prompt")); err != nil {
		t.Fatalf("duplicate AppendHistory should be silent: %v", err)
	}
	// Same text as a chart prompt is distinct.
	if err := store.AppendHistory(ctx, sessionID, session.NewHistoryEntry(session.KindChart, "same prompt")); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	got, err := store.ListHistory(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(history) = %d, want 2", len(got))
	}
}

func TestPostgres_HistoryUnknownSession(t *testing.T) {
	store := setupTestDB(t)

	got, err := store.ListHistory(context.Background(), "sess_nonexistent")
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(history) = %d, want 0", len(got))
	}
}

func TestPostgres_Feedback(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sessionID := uniqueSession("sess_fb")

	first := session.NewFeedbackEntry(session.KindChart, "bar chart", "useful")
	second := session.NewFeedbackEntry(session.KindChart, "bar chart", "useful")
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)

	if err := store.AddFeedback(ctx, sessionID, first); err != nil {
		t.Fatalf("AddFeedback failed: %v", err)
	}
	// Identical content with a distinct ID is a separate submission.
	if err := store.AddFeedback(ctx, sessionID, second); err != nil {
		t.Fatalf("AddFeedback failed: %v", err)
	}

	got, err := store.ListFeedback(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListFeedback failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(feedback) = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("feedback[0].ID = %q, want newest entry %q", got[0].ID, second.ID)
	}
	if got[0].Value != "useful" {
		t.Errorf("feedback[0].Value = %q, want %q", got[0].Value, "useful")
	}
}

func TestPostgres_FeedbackDuplicateID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sessionID := uniqueSession("sess_fbdup")

	e := session.NewFeedbackEntry(session.KindQA, "answer", "good")
	if err := store.AddFeedback(ctx, sessionID, e); err != nil {
		t.Fatalf("AddFeedback failed: %v", err)
	}

	err := store.AddFeedback(ctx, sessionID, e)
	if !errors.Is(err, session.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestPostgres_SessionIsolation(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sessionA := uniqueSession("sess_iso_a")
	sessionB := uniqueSession("sess_iso_b")

	if err := store.AppendHistory(ctx, sessionA, session.NewHistoryEntry(session.KindChart, "only in A")); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	got, err := store.ListHistory(ctx, sessionB)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("session B should not see session A's history, got %d entries", len(got))
	}
}
