// Package orchestrator drives the per-note sync pipeline: existence check,
// formatting, record creation and the run tally.
//
// Each note moves from pending to exactly one of Created, Skipped or Failed.
// Notes are processed sequentially in the order the sources yield them.
package orchestrator

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aretw0/notesync/pkg/core"
	"github.com/aretw0/notesync/pkg/dedup"
	"github.com/aretw0/notesync/pkg/format"
	"github.com/aretw0/notesync/pkg/normalize"
)

// DefaultDelay is the minimum interval between two create calls.
const DefaultDelay = 300 * time.Millisecond

// Creator is the record-creation subset of core.Destination.
type Creator interface {
	CreateRecord(ctx context.Context, collectionID string, props core.Properties, blocks []core.Block) (string, error)
}

// Rememberer is implemented by checkers that learn records created during
// the run, such as *dedup.Index.
type Rememberer interface {
	Remember(n core.Note, id string)
}

// Service is the sync orchestrator.
type Service struct {
	dest      Creator
	checker   dedup.Checker
	formatter *format.Formatter
	delay     time.Duration
	reporter  Reporter
	logger    *slog.Logger

	mu      sync.RWMutex
	running bool
	last    Stats
}

// Option configures a Service.
type Option func(*Service)

// WithChecker sets the existence check. Without one every note is created.
func WithChecker(c dedup.Checker) Option {
	return func(s *Service) { s.checker = c }
}

// WithFormatter sets the formatter. The default uses the block schema.
func WithFormatter(f *format.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithDelay sets the minimum interval between create calls. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithReporter receives one Event per processed note.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an orchestrator writing to dest.
func New(dest Creator, opts ...Option) *Service {
	s := &Service{
		dest:      dest,
		formatter: format.New(format.SchemaBlocks),
		delay:     DefaultDelay,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes every result into the collection and returns the tally.
// Per-note failures never abort the run; the returned error is non-nil only
// when ctx is cancelled, alongside the stats gathered so far.
func (s *Service) Run(ctx context.Context, collectionID string, results iter.Seq[normalize.Result]) (Stats, error) {
	s.setRunning(true)
	defer s.setRunning(false)

	var limiter *rate.Limiter
	if s.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.delay), 1)
	}

	var stats Stats
	for res := range results {
		if err := ctx.Err(); err != nil {
			s.finish(stats)
			return stats, err
		}
		ev := s.process(ctx, collectionID, limiter, res)
		stats.add(ev)
		if s.reporter != nil {
			s.reporter.Report(ev)
		}
		if ev.Outcome == Failed && ctx.Err() != nil {
			s.finish(stats)
			return stats, ctx.Err()
		}
	}
	s.finish(stats)
	return stats, nil
}

func (s *Service) process(ctx context.Context, collectionID string, limiter *rate.Limiter, res normalize.Result) Event {
	ev := Event{Note: res.Note, Origin: res.Origin}
	if res.Err != nil {
		ev.Outcome, ev.Err = Failed, res.Err
		return ev
	}

	stored := res.Note
	stored.Title = s.formatter.Title(res.Note)
	if s.checker != nil {
		found, err := s.checker.Exists(ctx, stored)
		if err != nil {
			// Fail open: a broken check must not block the sync.
			s.logger.Warn("duplicate check failed, creating anyway", "title", res.Note.Title, "error", err)
		} else if found {
			ev.Outcome = Skipped
			return ev
		}
	}

	page := s.formatter.Format(res.Note)

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			ev.Outcome, ev.Err = Failed, err
			return ev
		}
	}

	id, err := s.dest.CreateRecord(ctx, collectionID, page.Properties, page.Blocks)
	if err != nil {
		ev.Outcome = Failed
		ev.Err = &core.DestinationWriteError{Op: "create", Target: res.Note.Title, Err: err}
		s.logger.Warn("create failed", "title", res.Note.Title, "error", err)
		return ev
	}
	s.logger.Debug("record created", "title", res.Note.Title, "id", id)

	if r, ok := s.checker.(Rememberer); ok {
		r.Remember(stored, id)
	}
	ev.Outcome, ev.RecordID = Created, id
	return ev
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

func (s *Service) finish(stats Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = stats
}
