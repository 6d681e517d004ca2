package notesync

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/notesync/internal/platform"
	"github.com/aretw0/notesync/pkg/adapters/keep"
	"github.com/aretw0/notesync/pkg/config"
	"github.com/aretw0/notesync/pkg/core"
	"github.com/aretw0/notesync/pkg/orchestrator"
)

// --- Types ---

// Config is the complete notesync configuration.
type Config = config.Config

// Session is a destination bound to its target collection.
type Session = platform.Session

// SyncReport is the outcome of one sync run.
type SyncReport = platform.SyncReport

// Stats is the tally of a sync run.
type Stats = orchestrator.Stats

// Event describes the outcome of one note during a sync run.
type Event = orchestrator.Event

// Note is the canonical note shape.
type Note = core.Note

// --- Configuration ---

// Option defines a functional option for configuring a session.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDestination injects a custom destination (e.g. a fake).
func WithDestination(dest core.Destination) Option {
	return platform.WithDestination(dest)
}

// WithLocal targets a local directory instead of Notion.
func WithLocal(dir string) Option {
	return platform.WithLocal(dir)
}

// WithLocalFormat selects "markdown" or "json" record files for WithLocal.
func WithLocalFormat(format string) Option {
	return platform.WithLocalFormat(format)
}

// WithKeepClient provides the Google Keep account client.
func WithKeepClient(c keep.Client) Option {
	return platform.WithKeepClient(c)
}

// WithHTTPClient overrides the HTTP client used to reach Notion.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithWatcherErrorHandler receives errors raised inside the watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// LoadConfig reads a config file and overlays the environment. An empty
// path reads the environment and defaults only.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return config.Defaults()
}

// Open connects to the destination and resolves the target collection,
// creating it when create is set and none is configured.
func Open(ctx context.Context, cfg Config, create bool, opts ...Option) (*Session, error) {
	return platform.Open(ctx, cfg, create, opts...)
}

// --- Utils ---

// FindConfig recursively looks upwards for a notesync config file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}
