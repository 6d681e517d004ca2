package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/notesync/pkg/adapters/fs"
	"github.com/aretw0/notesync/pkg/adapters/lifecycle"
	"github.com/aretw0/notesync/pkg/config"
	"github.com/aretw0/notesync/pkg/core"
	"github.com/aretw0/notesync/pkg/dedup"
	"github.com/aretw0/notesync/pkg/format"
	"github.com/aretw0/notesync/pkg/normalize"
	"github.com/aretw0/notesync/pkg/orchestrator"
	"github.com/aretw0/notesync/pkg/reconcile"
)

// Dedup modes accepted in sync.dedup.
const (
	DedupSearch = "search"
	DedupIndex  = "index"
	DedupNone   = "none"
)

// SyncReport is the outcome of one sync run.
type SyncReport struct {
	Stats   orchestrator.Stats
	Notices []string
	Readers int
}

// Checker returns the existence check for the configured dedup mode.
// A failed index build falls back to the search check.
func (s *Session) Checker(ctx context.Context) (dedup.Checker, error) {
	switch s.Config.Sync.Dedup {
	case DedupNone:
		return nil, nil
	case DedupIndex:
		ix, err := dedup.BuildFrom(ctx, s.Destination, s.CollectionID, dedup.ByTitle)
		if err == nil {
			s.logger.Debug("duplicate index built", "records", ix.Len())
			return ix, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("duplicate index unavailable, using search", "error", err)
		fallthrough
	case DedupSearch, "":
		return dedup.NewSearchChecker(s.Destination, s.CollectionID), nil
	default:
		return nil, &core.ConfigurationError{Field: "sync.dedup", Reason: fmt.Sprintf("unknown mode %q", s.Config.Sync.Dedup)}
	}
}

// Sync reads the selected sources and creates every note that does not
// already exist in the collection.
func (s *Session) Sync(ctx context.Context, sources []string, reporter orchestrator.Reporter) (SyncReport, error) {
	readers, notices, err := s.Readers(sources)
	if err != nil {
		return SyncReport{}, err
	}
	report := SyncReport{Notices: notices, Readers: len(readers)}
	if len(readers) == 0 {
		return report, nil
	}

	checker, err := s.Checker(ctx)
	if err != nil {
		return report, err
	}
	svc := orchestrator.New(s.Destination,
		orchestrator.WithChecker(checker),
		orchestrator.WithFormatter(s.Formatter()),
		orchestrator.WithDelay(s.Config.Sync.Delay),
		orchestrator.WithReporter(reporter),
		orchestrator.WithLogger(s.logger),
	)
	report.Stats, err = svc.Run(ctx, s.CollectionID, normalize.Stream(ctx, s.logger, readers...))
	return report, err
}

// Duplicates fetches every record of the collection and groups them by
// title and content. Under the block schema the content is the record body,
// read one record at a time.
func (s *Session) Duplicates(ctx context.Context) ([]dedup.Group, int, error) {
	var ix *dedup.Index
	var err error
	if s.Schema == format.SchemaSimple {
		ix, err = dedup.BuildFrom(ctx, s.Destination, s.CollectionID, dedup.ByTitleContent,
			dedup.WithContentProperty(format.PropContent))
	} else {
		ix, err = dedup.BuildFromBlocks(ctx, s.Destination, s.CollectionID)
	}
	if err != nil {
		return nil, 0, err
	}
	return ix.Duplicates(), ix.Len(), nil
}

// Cleanup archives the extras of every group.
func (s *Session) Cleanup(ctx context.Context, groups []dedup.Group, dryRun bool) dedup.CleanupResult {
	return dedup.Cleanup(ctx, s.Destination, groups, dedup.CleanupOptions{DryRun: dryRun, Logger: s.logger})
}

// Backfill sets the created-date property of existing records from the
// source notes with the same title.
func (s *Session) Backfill(ctx context.Context, sources []string, opts reconcile.Options) (reconcile.Result, error) {
	readers, _, err := s.Readers(sources)
	if err != nil {
		return reconcile.Result{}, err
	}
	notes, _ := normalize.Collect(normalize.Stream(ctx, s.logger, readers...))
	if err := ctx.Err(); err != nil {
		return reconcile.Result{}, err
	}

	records, err := core.AllRecords(ctx, s.Destination, s.CollectionID)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("list records: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	s.logger.Info("backfilling created dates", "records", len(records), "notes", len(notes))
	patch := reconcile.BackfillCreated(s.Formatter().CreatedProperty())
	return reconcile.Reconcile(ctx, s.Destination, records, notes, patch, opts), nil
}

// Relabel replaces the label from with to on every record carrying it.
func (s *Session) Relabel(ctx context.Context, from, to string, opts reconcile.Options) (reconcile.Result, error) {
	if from == "" || to == "" {
		return reconcile.Result{}, &core.ConfigurationError{Field: "relabel", Reason: "both labels are required"}
	}
	records, err := core.AllRecords(ctx, s.Destination, s.CollectionID)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("list records: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	patch := reconcile.Relabel(s.Formatter().LabelsProperty(), from, to)
	return reconcile.Apply(ctx, s.Destination, records, patch, opts), nil
}

// Collection retrieves the target collection.
func (s *Session) Collection(ctx context.Context) (core.Collection, error) {
	return s.Destination.GetCollection(ctx, s.CollectionID)
}

// WatchDirs lists the local directories the selected sources read from.
func WatchDirs(cfg config.Config, selected []string) []string {
	var dirs []string
	for _, src := range selected {
		switch src {
		case config.SourceGoogleKeep:
			if cfg.GoogleKeep.TakeoutDir != "" {
				dirs = append(dirs, cfg.GoogleKeep.TakeoutDir)
			}
		case config.SourceAppleNotes:
			if cfg.AppleNotes.ExportDir != "" {
				dirs = append(dirs, cfg.AppleNotes.ExportDir)
			}
			if cfg.AppleNotes.DatabasePath != "" {
				dirs = append(dirs, filepath.Dir(cfg.AppleNotes.DatabasePath))
			}
		}
	}
	return dirs
}

// Watch runs a sync, then re-runs it after every debounced change in the
// source directories until ctx is cancelled. onRun receives every outcome.
func (s *Session) Watch(ctx context.Context, sources []string, reporter orchestrator.Reporter, onRun func(SyncReport, error)) error {
	dirs := WatchDirs(s.Config, sources)
	if len(dirs) == 0 {
		return &core.ConfigurationError{Field: "sync.sources", Reason: "no local source directory to watch"}
	}

	src := lifecycle.NewSource(fs.NewWatcher(fs.WatchConfig{
		Dirs:         dirs,
		Logger:       s.logger,
		ErrorHandler: s.opts.watchHandler,
	}))
	if err := src.Start(ctx); err != nil {
		return err
	}

	run := func() {
		report, err := s.Sync(ctx, sources, reporter)
		if onRun != nil {
			onRun(report, err)
		}
	}
	run()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-src.Events():
			if !ok {
				return nil
			}
			s.logger.Info("re-running sync", "event", ev.String())
			run()
		}
	}
}
