package fs

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// indexEntry is the cached summary of one stored record.
type indexEntry struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Title      string    `json:"title"`
	Archived   bool      `json:"archived,omitempty"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"createdAt"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	NextSeq int64                  `json:"nextSeq"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by record id
	dirty   bool
	mu      sync.RWMutex
}

// cache keeps the record index that makes listing ordered and search cheap
// without opening every record file.
type cache struct {
	Path  string // {root}/{systemDir}/index.json
	index *index
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing file starts empty; a corrupted
// one is reported through ok=false so the caller can rebuild it.
func (c *cache) Load() (ok bool, err error) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil || c.index.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
		c.index.NextSeq = 0
		return false, nil
	}

	c.index.dirty = false
	return true, nil
}

// Save persists the cache if it changed.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := writeAtomic(c.Path, data); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Add appends an entry at the end of the insertion order.
func (c *cache) Add(entry indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.NextSeq++
	entry.Seq = c.index.NextSeq
	c.index.Entries[entry.ID] = &entry
	c.index.dirty = true
}

// Restore inserts an entry keeping its sequence number.
func (c *cache) Restore(entry indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries[entry.ID] = &entry
	c.index.NextSeq = max(c.index.NextSeq, entry.Seq)
	c.index.dirty = true
}

// Get returns a copy of the entry for id.
func (c *cache) Get(id string) (indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[id]
	if !ok {
		return indexEntry{}, false
	}
	return *entry, true
}

// Update mutates an entry in place.
func (c *cache) Update(id string, fn func(*indexEntry)) bool {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	entry, ok := c.index.Entries[id]
	if !ok {
		return false
	}
	fn(entry)
	c.index.dirty = true
	return true
}

// Ordered returns the entries matching keep, in insertion order.
func (c *cache) Ordered(keep func(indexEntry) bool) []indexEntry {
	c.index.mu.RLock()
	out := make([]indexEntry, 0, len(c.index.Entries))
	for _, e := range c.index.Entries {
		if keep == nil || keep(*e) {
			out = append(out, *e)
		}
	}
	c.index.mu.RUnlock()

	slices.SortFunc(out, func(a, b indexEntry) int { return cmp.Compare(a.Seq, b.Seq) })
	return out
}

// Reset drops every entry.
func (c *cache) Reset() {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	c.index.Entries = make(map[string]*indexEntry)
	c.index.NextSeq = 0
	c.index.dirty = true
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

// sortByCreated orders entries rebuilt from disk, ties broken by id.
func sortByCreated(entries []indexEntry) {
	slices.SortStableFunc(entries, func(a, b indexEntry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
