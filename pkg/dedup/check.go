package dedup

import (
	"context"
	"fmt"

	"github.com/aretw0/notesync/pkg/core"
)

// Checker answers whether a note already exists in the destination.
// An error means the check itself could not be performed.
type Checker interface {
	Exists(ctx context.Context, n core.Note) (bool, error)
}

// Searcher is the text-search subset of core.Destination.
type Searcher interface {
	SearchRecords(ctx context.Context, query string) ([]core.Record, error)
}

// SearchChecker matches a note by exact, case-sensitive title among the
// search results belonging to one collection.
type SearchChecker struct {
	search       Searcher
	collectionID string
}

// NewSearchChecker scopes title searches to collectionID.
func NewSearchChecker(search Searcher, collectionID string) *SearchChecker {
	return &SearchChecker{search: search, collectionID: collectionID}
}

// Exists searches for the note's title. A failed search returns an error
// wrapping core.ErrDuplicateCheck; callers treat it as not found.
func (c *SearchChecker) Exists(ctx context.Context, n core.Note) (bool, error) {
	records, err := c.search.SearchRecords(ctx, n.Title)
	if err != nil {
		return false, fmt.Errorf("%w: search %q: %w", core.ErrDuplicateCheck, n.Title, err)
	}
	for _, r := range records {
		if r.Archived || !r.InCollection(c.collectionID) {
			continue
		}
		if r.Title() == n.Title {
			return true, nil
		}
	}
	return false, nil
}
