// Package fs provides a directory-backed core.Destination for dry runs and
// offline mirrors, and a watcher that reports changes in export directories.
//
// Layout:
//
//	{root}/{collection-id}/collection.json
//	{root}/{collection-id}/{record-id}.md   (or .json)
//	{root}/.notesync/index.json             (ordered record index)
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notesync/pkg/core"
)

const (
	DefaultSystemDir = ".notesync"
	DefaultPageSize  = 100
	collectionFile   = "collection.json"
)

// Config holds the configuration for the filesystem destination.
type Config struct {
	Path      string
	SystemDir string // e.g. ".notesync"
	Format    string // "markdown" (default) or "json"
	PageSize  int
	Logger    *slog.Logger
}

// Destination implements core.Destination on a local directory.
type Destination struct {
	Path       string
	config     Config
	serializer Serializer
	cache      *cache

	mu     sync.RWMutex
	loaded bool
	writes int
}

type storedCollection struct {
	ID        string      `json:"id"`
	ParentID  string      `json:"parent_id"`
	Title     string      `json:"title"`
	Schema    core.Schema `json:"schema"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewDestination creates a filesystem destination rooted at config.Path.
func NewDestination(config Config) (*Destination, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("fs destination: path is required")
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Format == "" {
		config.Format = "markdown"
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	ser, ok := DefaultSerializers()[strings.ToLower(config.Format)]
	if !ok {
		return nil, fmt.Errorf("fs destination: unsupported format %q", config.Format)
	}
	return &Destination{
		Path:       config.Path,
		config:     config,
		serializer: ser,
		cache:      newCache(config.Path, config.SystemDir),
	}, nil
}

// ensureLoaded loads the index once, rebuilding it from the record files
// when it is missing or corrupted.
func (d *Destination) ensureLoaded() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	ok, err := d.cache.Load()
	if err != nil {
		return err
	}
	if !ok {
		if err := d.rebuild(); err != nil {
			return err
		}
	}
	d.loaded = true
	return nil
}

// rebuild scans every collection directory and re-creates the index,
// ordering records by creation time.
func (d *Destination) rebuild() error {
	d.cache.Reset()
	dirs, err := os.ReadDir(d.Path)
	if err != nil {
		return err
	}
	var entries []indexEntry
	for _, dir := range dirs {
		if !dir.IsDir() || strings.HasPrefix(dir.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(d.Path, dir.Name()))
		if err != nil {
			return err
		}
		for _, f := range files {
			if f.IsDir() || f.Name() == collectionFile || filepath.Ext(f.Name()) != d.serializer.Ext() {
				continue
			}
			rec, err := d.readFile(filepath.Join(d.Path, dir.Name(), f.Name()))
			if err != nil {
				d.config.Logger.Warn("skipping unreadable record", "file", f.Name(), "error", err)
				continue
			}
			entries = append(entries, indexEntry{
				ID:         rec.ID,
				Collection: dir.Name(),
				Title:      rec.record().Title(),
				Archived:   rec.Archived,
				CreatedAt:  rec.CreatedAt,
			})
		}
	}
	sortByCreated(entries)
	for i, e := range entries {
		e.Seq = int64(i + 1)
		d.cache.Restore(e)
	}
	d.config.Logger.Debug("index rebuilt", "records", len(entries))
	return d.cache.Save()
}

func (d *Destination) collectionDir(id string) string {
	return filepath.Join(d.Path, id)
}

func (d *Destination) recordPath(collectionID, id string) string {
	return filepath.Join(d.collectionDir(collectionID), id+d.serializer.Ext())
}

func (d *Destination) readFile(path string) (storedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storedRecord{}, err
	}
	return d.serializer.Decode(data)
}

func (d *Destination) writeRecord(rec storedRecord) error {
	data, err := d.serializer.Encode(rec)
	if err != nil {
		return err
	}
	if err := writeAtomic(d.recordPath(rec.ParentID, rec.ID), data); err != nil {
		return err
	}
	d.mu.Lock()
	d.writes++
	d.mu.Unlock()
	return nil
}

func (d *Destination) loadRecord(id string) (storedRecord, indexEntry, error) {
	if err := d.ensureLoaded(); err != nil {
		return storedRecord{}, indexEntry{}, err
	}
	entry, ok := d.cache.Get(id)
	if !ok {
		return storedRecord{}, indexEntry{}, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	rec, err := d.readFile(d.recordPath(entry.Collection, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storedRecord{}, entry, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
		}
		return storedRecord{}, entry, err
	}
	return rec, entry, nil
}

// CreateCollection creates a collection directory with its schema.
func (d *Destination) CreateCollection(ctx context.Context, parentID, title string, schema core.Schema) (string, error) {
	if err := d.ensureLoaded(); err != nil {
		return "", err
	}
	col := storedCollection{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Title:     title,
		Schema:    schema,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(d.collectionDir(col.ID), collectionFile), data); err != nil {
		return "", err
	}
	return col.ID, nil
}

// GetCollection reads a collection and its property types.
func (d *Destination) GetCollection(ctx context.Context, collectionID string) (core.Collection, error) {
	data, err := os.ReadFile(filepath.Join(d.collectionDir(collectionID), collectionFile))
	if errors.Is(err, os.ErrNotExist) {
		return core.Collection{}, fmt.Errorf("collection %s: %w", collectionID, core.ErrNotFound)
	}
	if err != nil {
		return core.Collection{}, err
	}
	var col storedCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return core.Collection{}, fmt.Errorf("invalid collection %s: %w", collectionID, err)
	}
	out := core.Collection{ID: col.ID, Title: col.Title, Properties: make(map[string]core.PropertyType, len(col.Schema))}
	for name, p := range col.Schema {
		out.Properties[name] = p.Type
	}
	return out, nil
}

// FindCollection returns the id of the oldest collection titled title.
func (d *Destination) FindCollection(ctx context.Context, title string) (string, bool, error) {
	dirs, err := os.ReadDir(d.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var found *storedCollection
	for _, dir := range dirs {
		if !dir.IsDir() || strings.HasPrefix(dir.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.Path, dir.Name(), collectionFile))
		if err != nil {
			continue
		}
		var col storedCollection
		if err := json.Unmarshal(data, &col); err != nil || col.Title != title {
			continue
		}
		if found == nil || col.CreatedAt.Before(found.CreatedAt) {
			found = &col
		}
	}
	if found == nil {
		return "", false, nil
	}
	return found.ID, true, nil
}

// CreateRecord writes a new record file and appends it to the index.
func (d *Destination) CreateRecord(ctx context.Context, collectionID string, props core.Properties, blocks []core.Block) (string, error) {
	if err := d.ensureLoaded(); err != nil {
		return "", err
	}
	if _, err := os.Stat(d.collectionDir(collectionID)); err != nil {
		return "", fmt.Errorf("collection %s: %w", collectionID, core.ErrNotFound)
	}
	now := time.Now().UTC()
	rec := storedRecord{
		ID:         uuid.NewString(),
		ParentID:   collectionID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Properties: clone(props),
		Blocks:     append([]core.Block(nil), blocks...),
	}
	if err := d.writeRecord(rec); err != nil {
		return "", err
	}
	d.cache.Add(indexEntry{
		ID:         rec.ID,
		Collection: collectionID,
		Title:      rec.record().Title(),
		CreatedAt:  now,
	})
	return rec.ID, d.cache.Save()
}

// UpdateRecord merges props into the record.
func (d *Destination) UpdateRecord(ctx context.Context, recordID string, props core.Properties) error {
	rec, _, err := d.loadRecord(recordID)
	if err != nil {
		return err
	}
	if rec.Properties == nil {
		rec.Properties = make(core.Properties, len(props))
	}
	for name, p := range props {
		rec.Properties[name] = p
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := d.writeRecord(rec); err != nil {
		return err
	}
	d.cache.Update(recordID, func(e *indexEntry) { e.Title = rec.record().Title() })
	return d.cache.Save()
}

// ArchiveRecord flags the record as archived. The file is kept.
func (d *Destination) ArchiveRecord(ctx context.Context, recordID string) error {
	rec, _, err := d.loadRecord(recordID)
	if err != nil {
		return err
	}
	rec.Archived = true
	rec.UpdatedAt = time.Now().UTC()
	if err := d.writeRecord(rec); err != nil {
		return err
	}
	d.cache.Update(recordID, func(e *indexEntry) { e.Archived = true })
	return d.cache.Save()
}

// ListRecords returns one page of non-archived records in creation order.
// The cursor is the offset of the next page.
func (d *Destination) ListRecords(ctx context.Context, collectionID, cursor string) (core.RecordPage, error) {
	if err := d.ensureLoaded(); err != nil {
		return core.RecordPage{}, err
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return core.RecordPage{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}

	entries := d.cache.Ordered(func(e indexEntry) bool {
		return e.Collection == collectionID && !e.Archived
	})
	if offset > len(entries) {
		offset = len(entries)
	}
	end := min(offset+d.config.PageSize, len(entries))

	page := core.RecordPage{Records: make([]core.Record, 0, end-offset)}
	for _, e := range entries[offset:end] {
		if err := ctx.Err(); err != nil {
			return core.RecordPage{}, err
		}
		rec, err := d.readFile(d.recordPath(e.Collection, e.ID))
		if err != nil {
			return core.RecordPage{}, fmt.Errorf("read record %s: %w", e.ID, err)
		}
		page.Records = append(page.Records, rec.record())
	}
	if end < len(entries) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// SearchRecords returns non-archived records, across collections, whose
// title contains query, ignoring case.
func (d *Destination) SearchRecords(ctx context.Context, query string) ([]core.Record, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	entries := d.cache.Ordered(func(e indexEntry) bool {
		return !e.Archived && strings.Contains(strings.ToLower(e.Title), q)
	})
	out := make([]core.Record, 0, len(entries))
	for _, e := range entries {
		rec, err := d.readFile(d.recordPath(e.Collection, e.ID))
		if err != nil {
			return nil, fmt.Errorf("read record %s: %w", e.ID, err)
		}
		out = append(out, rec.record())
	}
	return out, nil
}

// Blocks returns the stored content blocks of a record.
func (d *Destination) Blocks(ctx context.Context, recordID string) ([]core.Block, error) {
	rec, _, err := d.loadRecord(recordID)
	if err != nil {
		return nil, err
	}
	return rec.Blocks, nil
}

func clone(props core.Properties) core.Properties {
	out := make(core.Properties, len(props))
	for k, v := range props {
		if v.Names != nil {
			v.Names = append([]string(nil), v.Names...)
		}
		out[k] = v
	}
	return out
}

var _ core.Destination = (*Destination)(nil)
