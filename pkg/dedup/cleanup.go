package dedup

import (
	"context"
	"log/slog"

	"github.com/aretw0/notesync/pkg/core"
)

// Archiver is the soft-delete subset of core.Destination.
type Archiver interface {
	ArchiveRecord(ctx context.Context, recordID string) error
}

// CleanupOptions tune a cleanup pass.
type CleanupOptions struct {
	// DryRun reports what would be archived without calling the destination.
	DryRun bool
	Logger *slog.Logger
}

// CleanupResult summarizes a cleanup pass.
type CleanupResult struct {
	Groups   int
	Archived int
	Failed   int
	// Planned lists the extra record ids, in archive order.
	Planned []string
	Errors  []error
}

// Cleanup archives every extra record of every duplicate group, keeping the
// first-fetched one. Records are archived, never deleted. A failed archive
// is counted and the pass continues.
func Cleanup(ctx context.Context, dest Archiver, groups []Group, opts CleanupOptions) CleanupResult {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res := CleanupResult{Groups: len(groups)}
	for _, g := range groups {
		logger.Info("duplicate group", "title", g.Key.Title, "keep", g.Keep, "extras", len(g.Extras))
		for _, id := range g.Extras {
			res.Planned = append(res.Planned, id)
			if opts.DryRun {
				continue
			}
			if err := dest.ArchiveRecord(ctx, id); err != nil {
				werr := &core.DestinationWriteError{Op: "archive", Target: id, Err: err}
				logger.Warn("archive failed", "id", id, "error", err)
				res.Failed++
				res.Errors = append(res.Errors, werr)
				continue
			}
			res.Archived++
		}
	}
	return res
}
