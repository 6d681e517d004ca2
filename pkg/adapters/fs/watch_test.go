package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatal("change channel closed")
		}
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func TestWatcher_DebouncesBatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(WatchConfig{Dirs: []string{dir}, Pattern: "**/*.json", Debounce: 100 * time.Millisecond})
	changes, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	for _, name := range []string{"a.json", "b.json", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	change := waitForChange(t, changes)
	for _, p := range change.Paths {
		if filepath.Ext(p) != ".json" {
			t.Errorf("Unexpected path in batch: %s", p)
		}
	}
	if len(change.Paths) == 0 {
		t.Error("Expected at least one path")
	}

	state := w.State().(WatcherState)
	if !state.Active || state.Batches < 1 {
		t.Errorf("Unexpected state: %+v", state)
	}

	cancel()
	select {
	case _, ok := <-changes:
		if ok {
			// a trailing batch may still be delivered; drain until closed
			for range changes {
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_NestedDirectories(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(WatchConfig{Dirs: []string{dir}, Debounce: 50 * time.Millisecond})
	changes, err := w.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(dir, "Shopping")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, changes)

	// The new directory is picked up; allow the watcher to register it.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(nested, "Shopping.md"), []byte("milk"), 0644); err != nil {
		t.Fatal(err)
	}
	change := waitForChange(t, changes)
	found := false
	for _, p := range change.Paths {
		if filepath.Base(p) == "Shopping.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Shopping.md in %v", change.Paths)
	}
}

func TestWatcher_Validation(t *testing.T) {
	if _, err := NewWatcher(WatchConfig{}).Watch(context.Background()); err == nil {
		t.Error("Expected error with no dirs")
	}
	if _, err := NewWatcher(WatchConfig{Dirs: []string{t.TempDir()}, Pattern: "[a"}).Watch(context.Background()); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}
