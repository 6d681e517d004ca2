package normalize

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/aretw0/notesync/pkg/core"
)

// Result is the outcome of reading and normalizing one record:
// either a Note or a *core.SourceReadError in Err.
type Result struct {
	Note   core.Note
	Origin string
	Err    error
}

// OK reports whether the record produced a note.
func (r Result) OK() bool { return r.Err == nil }

// Stream reads every reader in order and yields one Result per record.
// A reader that fails to authenticate contributes nothing; the failure is
// logged and the next reader proceeds.
func Stream(ctx context.Context, logger *slog.Logger, readers ...core.Reader) iter.Seq[Result] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(yield func(Result) bool) {
		for _, reader := range readers {
			if reader == nil {
				continue
			}
			kind := reader.Kind()
			if auth, ok := reader.(core.Authenticator); ok {
				if err := auth.Authenticate(ctx); err != nil {
					authErr := &core.AuthenticationError{Source: kind, Err: err}
					logger.Warn("source skipped", "source", kind, "error", authErr)
					continue
				}
			}
			for raw, err := range reader.Records(ctx) {
				res := normalizeOne(kind, raw, err)
				if res.Err != nil {
					logger.Warn("record skipped", "source", kind, "origin", res.Origin, "error", res.Err)
				}
				if !yield(res) {
					return
				}
			}
		}
	}
}

func normalizeOne(kind core.Source, raw core.RawRecord, readErr error) Result {
	origin := ""
	if raw != nil {
		origin = raw.Origin()
	}
	if readErr != nil {
		var sre *core.SourceReadError
		if errors.As(readErr, &sre) {
			return Result{Origin: sre.Origin, Err: sre}
		}
		return Result{Origin: origin, Err: &core.SourceReadError{Source: kind, Origin: origin, Err: readErr}}
	}
	note, err := Normalize(raw)
	if err != nil {
		return Result{Origin: origin, Err: &core.SourceReadError{Source: kind, Origin: origin, Err: err}}
	}
	return Result{Note: note, Origin: origin}
}

// Collect materializes a stream, splitting notes from read errors.
func Collect(results iter.Seq[Result]) ([]core.Note, []error) {
	var notes []core.Note
	var errs []error
	for res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		notes = append(notes, res.Note)
	}
	return notes, errs
}
