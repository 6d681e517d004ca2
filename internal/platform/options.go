package platform

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/notesync/pkg/adapters/keep"
	"github.com/aretw0/notesync/pkg/core"
)

// options holds the internal configuration for a notesync session.
type options struct {
	logger       *slog.Logger
	destination  core.Destination
	keepClient   keep.Client
	localDir     string
	localFormat  string
	httpClient   *http.Client
	watchHandler func(error)
}

// Option defines a functional option for configuring a session.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:      slog.New(slog.DiscardHandler),
		localFormat: "markdown",
	}
}

// WithLogger sets the logger shared by every component of the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDestination injects a destination (e.g. a fake in tests).
// If provided, neither Notion nor the local directory is used.
func WithDestination(dest core.Destination) Option {
	return func(o *options) {
		o.destination = dest
	}
}

// WithLocal targets a directory-backed destination instead of Notion.
func WithLocal(dir string) Option {
	return func(o *options) {
		o.localDir = dir
	}
}

// WithLocalFormat selects the record file format of the local destination
// ("markdown" or "json").
func WithLocalFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.localFormat = format
		}
	}
}

// WithKeepClient provides the Google Keep account client used when
// username and password are configured.
func WithKeepClient(c keep.Client) Option {
	return func(o *options) {
		o.keepClient = c
	}
}

// WithHTTPClient overrides the HTTP client of the Notion destination.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watchHandler = fn
	}
}
