package core

import (
	"context"
	"iter"
)

// Destination is the workspace tool that receives notes.
// Adhering to this interface keeps the sync pipeline independent of the
// concrete backend (Notion REST API, local directory, test fakes).
type Destination interface {
	// CreateCollection creates a collection under parentID and returns its id.
	CreateCollection(ctx context.Context, parentID, title string, schema Schema) (string, error)

	// GetCollection retrieves a collection and its property types.
	GetCollection(ctx context.Context, collectionID string) (Collection, error)

	// CreateRecord creates a record in the collection and returns its id.
	CreateRecord(ctx context.Context, collectionID string, props Properties, blocks []Block) (string, error)

	// UpdateRecord patches the given properties, leaving others untouched.
	UpdateRecord(ctx context.Context, recordID string, props Properties) error

	// ListRecords returns one page of the collection's records.
	// An empty cursor starts from the beginning.
	ListRecords(ctx context.Context, collectionID, cursor string) (RecordPage, error)

	// SearchRecords runs a text search. Results may include records of other
	// collections; callers filter by ParentID and compare titles themselves.
	SearchRecords(ctx context.Context, query string) ([]Record, error)

	// ArchiveRecord soft-deletes a record.
	ArchiveRecord(ctx context.Context, recordID string) error

	// Blocks returns the content blocks of a record, in order.
	Blocks(ctx context.Context, recordID string) ([]Block, error)
}

// Reader yields raw records of one note provider.
type Reader interface {
	// Kind reports which provider the records come from.
	Kind() Source

	// Records yields each raw record, or a per-record read error.
	// The sequence is finite and is consumed once per run.
	Records(ctx context.Context) iter.Seq2[RawRecord, error]
}

// Authenticator is implemented by readers that need credentials before
// records can be listed.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Pages returns a lazy sequence over every page of a collection, following
// the continuation cursor until the destination reports no more pages.
// Each range restarts from the first page. Iteration stops at the first error.
func Pages(ctx context.Context, dest Destination, collectionID string) iter.Seq2[RecordPage, error] {
	return func(yield func(RecordPage, error) bool) {
		cursor := ""
		for {
			page, err := dest.ListRecords(ctx, collectionID, cursor)
			if err != nil {
				yield(RecordPage{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.HasMore || page.NextCursor == "" {
				return
			}
			cursor = page.NextCursor
		}
	}
}

// AllRecords drains Pages into a single slice, in fetch order.
func AllRecords(ctx context.Context, dest Destination, collectionID string) ([]Record, error) {
	var records []Record
	for page, err := range Pages(ctx, dest, collectionID) {
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
	}
	return records, nil
}
