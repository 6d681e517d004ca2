package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/notesync/pkg/adapters/fs"
)

func TestSource_EmitsChangeEvents(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewSource(fs.NewWatcher(fs.WatchConfig{Dirs: []string{dir}, Debounce: 50 * time.Millisecond}))
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "note.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev, ok := <-src.Events():
		if !ok {
			t.Fatal("events closed")
		}
		change, isChange := ev.(ChangeEvent)
		if !isChange {
			t.Fatalf("Unexpected event type %T", ev)
		}
		if len(change.Paths) == 0 || !strings.HasPrefix(ev.String(), "sources changed") {
			t.Errorf("Unexpected event: %v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-src.Events():
		if ok {
			// A late batch may still be delivered; the channel closes next.
			<-src.Events()
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}

func TestSource_StartFailsWithoutDirs(t *testing.T) {
	src := NewSource(fs.NewWatcher(fs.WatchConfig{}))
	if err := src.Start(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if _, ok := <-src.Events(); ok {
		t.Fatal("Expected closed events channel")
	}
}
