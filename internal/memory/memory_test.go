package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "learnings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.UpdateFromRun(ctx, "FSLR", 0.62, "momentum weak"); err != nil {
		t.Fatalf("UpdateFromRun failed: %v", err)
	}
	if err := store.UpdateFromRun(ctx, "FSLR", 0.71, "improved"); err != nil {
		t.Fatalf("UpdateFromRun failed: %v", err)
	}
	if err := store.UpdateFromRun(ctx, "ENPH", 0.40, "thin data"); err != nil {
		t.Fatalf("UpdateFromRun failed: %v", err)
	}

	notes, err := store.FetchNotes(ctx, "FSLR", 10)
	if err != nil {
		t.Fatalf("FetchNotes failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	for _, n := range notes {
		if n.Ticker != "FSLR" {
			t.Errorf("unexpected ticker %s", n.Ticker)
		}
	}
}

func TestStoreEmptyTicker(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "learnings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	notes, err := store.FetchNotes(context.Background(), "NONE", 5)
	if err != nil {
		t.Fatalf("FetchNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes, got %d", len(notes))
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
