package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"labelspool/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	st, err := Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func TestFormatTimeSortsChronologically(t *testing.T) {
	whole := time.Date(2026, 3, 10, 12, 0, 5, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)

	if formatTime(whole) >= formatTime(half) {
		t.Fatalf("string order broken: %q !< %q", formatTime(whole), formatTime(half))
	}

	parsed, err := parseTimeString(formatTime(half))
	if err != nil {
		t.Fatalf("parse formatted time: %v", err)
	}
	if !parsed.Equal(half) {
		t.Fatalf("round trip = %v, want %v", parsed, half)
	}
}

func TestProcessedSurfacesMalformedTimestamp(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.MarkProcessed(ctx, "1001", time.Now()); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	if _, err := st.db.ExecContext(ctx, `UPDATE printed_orders SET printed_at = 'yesterday'`); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	_, err := st.Processed(ctx, 0)
	if err == nil || !strings.Contains(err.Error(), "1001") {
		t.Fatalf("expected parse error naming the order, got %v", err)
	}
}

func TestDrainAllSurfacesMalformedTimestamp(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.Enqueue(ctx, DeferredLabel{OrderID: "1001", Payload: []byte("x")}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := st.db.ExecContext(ctx, `UPDATE deferred_labels SET created_at = ''`); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	if _, err := st.DrainAll(ctx); err == nil {
		t.Fatal("expected parse error for corrupted created_at")
	}
}
