package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/notesync/pkg/adapters/applenotes"
	"github.com/aretw0/notesync/pkg/adapters/fs"
	"github.com/aretw0/notesync/pkg/adapters/keep"
	"github.com/aretw0/notesync/pkg/adapters/notion"
	"github.com/aretw0/notesync/pkg/config"
	"github.com/aretw0/notesync/pkg/core"
	"github.com/aretw0/notesync/pkg/format"
)

// Session is a destination bound to one target collection.
type Session struct {
	Config       config.Config
	Destination  core.Destination
	CollectionID string
	// Created reports that the collection was created by Open.
	Created bool
	Schema  format.Schema

	logger *slog.Logger
	opts   *options
}

// collectionFinder is implemented by destinations that can look a
// collection up by title.
type collectionFinder interface {
	FindCollection(ctx context.Context, title string) (string, bool, error)
}

// Open builds the destination described by cfg and resolves the target
// collection. When no collection id is configured and create is set, a
// collection titled cfg.Sync.Title is created under the parent page.
func Open(ctx context.Context, cfg config.Config, create bool, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	dest, err := newDestination(cfg, create, o)
	if err != nil {
		return nil, err
	}

	s := &Session{Config: cfg, Destination: dest, logger: o.logger, opts: o}
	if err := s.resolveCollection(ctx, create); err != nil {
		return nil, err
	}
	return s, nil
}

// newDestination selects the destination: injected, local directory or Notion.
func newDestination(cfg config.Config, create bool, o *options) (core.Destination, error) {
	if o.destination != nil {
		return o.destination, nil
	}
	if o.localDir != "" {
		return fs.NewDestination(fs.Config{
			Path:   o.localDir,
			Format: o.localFormat,
			Logger: o.logger,
		})
	}

	check := cfg.RequireDatabase
	if create {
		check = cfg.ValidateDestination
	}
	if err := check(); err != nil {
		return nil, err
	}
	return notion.New(notion.Options{
		BaseURL:       cfg.Notion.BaseURL,
		TokenProvider: notion.StaticToken(cfg.Notion.APIToken),
		HTTPClient:    o.httpClient,
		Timeout:       cfg.Notion.Timeout,
		MaxRetries:    cfg.Notion.MaxRetries,
		Logger:        o.logger,
	}), nil
}

func (s *Session) resolveCollection(ctx context.Context, create bool) error {
	override, hasOverride, err := format.ParseSchema(s.Config.Sync.Schema)
	if err != nil {
		return &core.ConfigurationError{Field: "sync.schema", Reason: err.Error()}
	}

	id := s.Config.Notion.DatabaseID
	if id == "" {
		if finder, ok := s.Destination.(collectionFinder); ok {
			found, ok, err := finder.FindCollection(ctx, s.Config.Sync.Title)
			if err != nil {
				return err
			}
			if ok {
				id = found
			}
		}
	}

	if id == "" {
		if !create {
			return &core.ConfigurationError{Field: "notion.database_id", Reason: "required"}
		}
		schema := format.SchemaBlocks
		if hasOverride {
			schema = override
		}
		created, err := s.Destination.CreateCollection(ctx, s.Config.Notion.ParentPageID, s.Config.Sync.Title, format.CollectionSchema(schema))
		if err != nil {
			return &core.DestinationWriteError{Op: "create collection", Target: s.Config.Sync.Title, Err: err}
		}
		s.logger.Info("collection created", "id", created, "title", s.Config.Sync.Title, "schema", schema)
		s.CollectionID = created
		s.Created = true
		s.Schema = schema
		return nil
	}

	s.CollectionID = id
	if hasOverride {
		s.Schema = override
		return nil
	}
	col, err := s.Destination.GetCollection(ctx, id)
	if err != nil {
		return fmt.Errorf("retrieve collection %s: %w", id, err)
	}
	s.Schema = format.DetectSchema(col)
	s.logger.Debug("collection schema detected", "id", id, "schema", s.Schema)
	return nil
}

// Formatter returns the formatter for the session's schema.
func (s *Session) Formatter() *format.Formatter {
	return format.New(s.Schema)
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Readers builds one reader per configured source among selected. Sources
// without settings are skipped and reported as notices, not errors.
func (s *Session) Readers(selected []string) ([]core.Reader, []string, error) {
	return NewReaders(s.Config, selected, s.opts)
}

// NewReaders builds the readers for the selected sources of cfg.
func NewReaders(cfg config.Config, selected []string, o *options) ([]core.Reader, []string, error) {
	if o == nil {
		o = defaultOptions()
	}
	if err := cfg.ValidateSources(selected); err != nil {
		return nil, nil, err
	}

	var (
		readers []core.Reader
		notices []string
	)
	for _, src := range selected {
		if !cfg.Configured(src) {
			notices = append(notices, fmt.Sprintf("%s not configured, skipping", sourceName(src)))
			continue
		}
		switch src {
		case config.SourceGoogleKeep:
			k := cfg.GoogleKeep
			if k.TakeoutDir != "" {
				r, err := keep.NewTakeoutReader(k.TakeoutDir, keep.WithLogger(o.logger))
				if err != nil {
					return nil, nil, err
				}
				readers = append(readers, r)
			}
			if k.Username != "" && k.Password != "" {
				if o.keepClient == nil {
					notices = append(notices, "Google Keep account sync needs a client, skipping account")
					continue
				}
				readers = append(readers, keep.NewAPIReader(o.keepClient, k.Username, k.Password))
			}
		case config.SourceAppleNotes:
			a := cfg.AppleNotes
			if a.DatabasePath != "" {
				readers = append(readers, applenotes.NewStoreReader(a.DatabasePath, o.logger))
			}
			if a.ExportDir != "" {
				readers = append(readers, applenotes.NewExportReader(a.ExportDir, a.SourceTag, o.logger))
			}
		}
	}
	for _, n := range notices {
		o.logger.Warn(n)
	}
	return readers, notices, nil
}

func sourceName(selector string) string {
	switch selector {
	case config.SourceGoogleKeep:
		return string(core.SourceGoogleKeep)
	case config.SourceAppleNotes:
		return string(core.SourceAppleNotes)
	default:
		return selector
	}
}
