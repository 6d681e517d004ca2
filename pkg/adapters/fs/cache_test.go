package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_Load(t *testing.T) {
	t.Run("Missing File Asks For Rebuild", func(t *testing.T) {
		c := newCache(t.TempDir(), ".cache")
		ok, err := c.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if ok {
			t.Error("Expected ok=false for a missing index")
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)
		jsonContent := `{
			"version": 1,
			"nextSeq": 2,
			"entries": {
				"r1": {"id": "r1", "collection": "c1", "title": "Groceries", "seq": 2}
			}
		}`
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte(jsonContent), 0644)

		c := newCache(tmpDir, ".cache")
		ok, err := c.Load()
		if err != nil || !ok {
			t.Fatalf("Load failed: ok=%v err=%v", ok, err)
		}
		entry, found := c.Get("r1")
		if !found {
			t.Fatal("Expected entry r1 not found")
		}
		if entry.Title != "Groceries" {
			t.Errorf("Expected title 'Groceries', got '%s'", entry.Title)
		}

		c.Add(indexEntry{ID: "r2", Collection: "c1"})
		if e, _ := c.Get("r2"); e.Seq != 3 {
			t.Errorf("Expected seq 3 after nextSeq 2, got %d", e.Seq)
		}
	})

	t.Run("Corrupted JSON Asks For Rebuild", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".cache")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte("{ invalid json"), 0644)

		c := newCache(tmpDir, ".cache")
		ok, err := c.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if ok || c.Len() != 0 {
			t.Errorf("Expected empty cache and ok=false after corruption, got ok=%v len=%d", ok, c.Len())
		}
	})
}

func TestCache_SaveAndOrder(t *testing.T) {
	tmpDir := t.TempDir()
	c := newCache(tmpDir, ".cache")

	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
		t.Error("Expected no file written for a clean cache")
	}

	for _, id := range []string{"c", "a", "b"} {
		c.Add(indexEntry{ID: id, Collection: "col", Title: id})
	}
	c.Update("a", func(e *indexEntry) { e.Archived = true })
	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := newCache(tmpDir, ".cache")
	if ok, err := reloaded.Load(); err != nil || !ok {
		t.Fatalf("Reload failed: ok=%v err=%v", ok, err)
	}
	got := reloaded.Ordered(func(e indexEntry) bool { return !e.Archived })
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("Expected [c b] in insertion order, got %+v", got)
	}
}

func TestSortByCreated(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []indexEntry{
		{ID: "late", CreatedAt: base.Add(time.Hour)},
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base},
	}
	sortByCreated(entries)
	if entries[0].ID != "a" || entries[1].ID != "b" || entries[2].ID != "late" {
		t.Errorf("Unexpected order: %+v", entries)
	}
}
