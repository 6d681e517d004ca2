// Package dedup decides whether a note already exists in the destination.
//
// Two strategies are offered. An Index is built once from every record of a
// collection and answers in constant time; it also groups records sharing a
// (title, content) key for retroactive cleanup. A SearchChecker asks the
// destination's text search for each candidate and matches titles exactly.
package dedup

import (
	"context"
	"fmt"
	"iter"

	"github.com/aretw0/notesync/pkg/core"
)

// Mode selects the identity key extracted from records and notes.
type Mode int

const (
	// ByTitle keys on the title alone.
	ByTitle Mode = iota
	// ByTitleContent keys on the (title, content) pair.
	ByTitleContent
)

func (m Mode) String() string {
	if m == ByTitleContent {
		return "title+content"
	}
	return "title"
}

// DefaultContentProperty is the record property read as content in
// ByTitleContent mode.
const DefaultContentProperty = "Content"

// Index groups destination record ids by identity key.
// It is read-only once built, apart from Add.
type Index struct {
	mode    Mode
	content string
	groups  map[core.Key][]string
	order   []core.Key
	size    int
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithContentProperty sets the record property holding the note body.
func WithContentProperty(name string) IndexOption {
	return func(ix *Index) {
		if name != "" {
			ix.content = name
		}
	}
}

// NewIndex returns an empty index.
func NewIndex(mode Mode, opts ...IndexOption) *Index {
	ix := &Index{
		mode:    mode,
		content: DefaultContentProperty,
		groups:  make(map[core.Key][]string),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Build drains every page of the sequence into a new index. A failing page
// aborts the build; a partial index is never returned.
func Build(pages iter.Seq2[core.RecordPage, error], mode Mode, opts ...IndexOption) (*Index, error) {
	ix := NewIndex(mode, opts...)
	for page, err := range pages {
		if err != nil {
			return nil, err
		}
		for _, r := range page.Records {
			ix.AddRecord(r)
		}
	}
	return ix, nil
}

// BuildFrom builds an index over the records of a destination collection.
func BuildFrom(ctx context.Context, dest core.Destination, collectionID string, mode Mode, opts ...IndexOption) (*Index, error) {
	return Build(core.Pages(ctx, dest, collectionID), mode, opts...)
}

// BlockReader reads the body of a record.
type BlockReader interface {
	Blocks(ctx context.Context, recordID string) ([]core.Block, error)
}

// BuildFromBlocks builds a ByTitleContent index whose content is each
// record's body, for collections that keep the note text in blocks rather
// than in a property. Archived records are not read.
func BuildFromBlocks(ctx context.Context, dest core.Destination, collectionID string) (*Index, error) {
	return buildWithBody(ctx, core.Pages(ctx, dest, collectionID), dest)
}

func buildWithBody(ctx context.Context, pages iter.Seq2[core.RecordPage, error], body BlockReader) (*Index, error) {
	ix := NewIndex(ByTitleContent)
	for page, err := range pages {
		if err != nil {
			return nil, err
		}
		for _, r := range page.Records {
			if r.Archived {
				continue
			}
			blocks, err := body.Blocks(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("read blocks of %s: %w", r.ID, err)
			}
			ix.add(core.Key{Title: r.Title(), Content: core.BlocksText(blocks)}, r.ID)
		}
	}
	return ix, nil
}

// Mode reports the index's key mode.
func (ix *Index) Mode() Mode { return ix.mode }

// Len is the number of records indexed.
func (ix *Index) Len() int { return ix.size }

// AddRecord indexes a destination record. Archived records are ignored.
func (ix *Index) AddRecord(r core.Record) {
	if r.Archived {
		return
	}
	key := core.Key{Title: r.Title()}
	if ix.mode == ByTitleContent {
		key.Content = r.Text(ix.content)
	}
	ix.add(key, r.ID)
}

// Add indexes a note under a record id, typically right after creating it.
func (ix *Index) Add(n core.Note, id string) {
	ix.add(ix.key(n), id)
}

func (ix *Index) add(key core.Key, id string) {
	if _, ok := ix.groups[key]; !ok {
		ix.order = append(ix.order, key)
	}
	ix.groups[key] = append(ix.groups[key], id)
	ix.size++
}

func (ix *Index) key(n core.Note) core.Key {
	if ix.mode == ByTitleContent {
		return n.Key()
	}
	return core.Key{Title: n.Title}
}

// Lookup returns the ids recorded under the note's key, in fetch order.
func (ix *Index) Lookup(n core.Note) []string {
	return ix.groups[ix.key(n)]
}

// Contains reports whether a record with the note's key exists.
func (ix *Index) Contains(n core.Note) bool {
	return len(ix.groups[ix.key(n)]) > 0
}

// Exists implements Checker. It never fails.
func (ix *Index) Exists(_ context.Context, n core.Note) (bool, error) {
	return ix.Contains(n), nil
}

// Remember implements the orchestrator's hook for freshly created records,
// so a note repeated within one run is detected.
func (ix *Index) Remember(n core.Note, id string) {
	ix.Add(n, id)
}

// Group is a set of records sharing one key.
type Group struct {
	Key    core.Key
	Keep   string
	Extras []string
}

// Duplicates returns every key with more than one record, in the order the
// key was first seen. The first-fetched id is kept; the rest are extras.
func (ix *Index) Duplicates() []Group {
	var out []Group
	for _, key := range ix.order {
		ids := ix.groups[key]
		if len(ids) < 2 {
			continue
		}
		out = append(out, Group{
			Key:    key,
			Keep:   ids[0],
			Extras: append([]string(nil), ids[1:]...),
		})
	}
	return out
}
