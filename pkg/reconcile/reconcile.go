// Package reconcile patches records that already exist in the destination,
// joining them to freshly read source notes by exact title. It never creates
// records.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/aretw0/notesync/pkg/core"
)

// Skip reasons reported in Event.Reason.
const (
	ReasonNoMatch   = "no match"
	ReasonUnchanged = "unchanged"
)

// Updater is the property-patch subset of core.Destination.
type Updater interface {
	UpdateRecord(ctx context.Context, recordID string, props core.Properties) error
}

// Patch computes the properties to write for a record. A non-empty skip
// reason leaves the record untouched. Note is the zero value when the pass
// runs without a join.
type Patch func(r core.Record, n core.Note) (props core.Properties, skip string)

// Event describes what happened to one record.
type Event struct {
	Record  core.Record
	Title   string
	Updated bool
	Reason  string
	Err     error
}

// Result tallies a pass. Every record increments exactly one counter.
type Result struct {
	Updated int
	Skipped int
	Failed  int
	Errors  []error
}

// Options tune a pass.
type Options struct {
	Logger   *slog.Logger
	Reporter func(Event)
	// DryRun computes patches without calling the destination.
	DryRun bool
}

// Reconcile joins records and notes on title and applies patch to every
// matched pair. When several notes share a title the last one with a
// creation time wins; a note without one only fills an empty slot.
// Unmatched records are skipped with ReasonNoMatch.
func Reconcile(ctx context.Context, dest Updater, records []core.Record, notes []core.Note, patch Patch, opts Options) Result {
	byTitle := make(map[string]core.Note, len(notes))
	for _, n := range notes {
		if prev, ok := byTitle[n.Title]; ok && prev.CreatedTime != nil && n.CreatedTime == nil {
			continue
		}
		byTitle[n.Title] = n
	}
	return run(ctx, dest, records, func(r core.Record) (core.Properties, string) {
		n, ok := byTitle[r.Title()]
		if !ok {
			return nil, ReasonNoMatch
		}
		return patch(r, n)
	}, opts)
}

// Apply runs patch over every record without joining source notes.
func Apply(ctx context.Context, dest Updater, records []core.Record, patch Patch, opts Options) Result {
	return run(ctx, dest, records, func(r core.Record) (core.Properties, string) {
		return patch(r, core.Note{})
	}, opts)
}

func run(ctx context.Context, dest Updater, records []core.Record, patch func(core.Record) (core.Properties, string), opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var res Result
	for _, r := range records {
		ev := Event{Record: r, Title: r.Title()}
		props, skip := patch(r)
		switch {
		case skip != "":
			ev.Reason = skip
			res.Skipped++
		case len(props) == 0:
			ev.Reason = ReasonUnchanged
			res.Skipped++
		case opts.DryRun:
			ev.Updated = true
			res.Updated++
		default:
			if err := dest.UpdateRecord(ctx, r.ID, props); err != nil {
				ev.Err = &core.DestinationWriteError{Op: "update", Target: ev.Title, Err: err}
				logger.Warn("update failed", "id", r.ID, "title", ev.Title, "error", err)
				res.Failed++
				res.Errors = append(res.Errors, ev.Err)
			} else {
				ev.Updated = true
				res.Updated++
			}
		}
		if opts.Reporter != nil {
			opts.Reporter(ev)
		}
	}
	return res
}
