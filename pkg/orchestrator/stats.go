package orchestrator

import "github.com/aretw0/notesync/pkg/core"

// Outcome is the terminal state of one note.
type Outcome int

const (
	Pending Outcome = iota
	Created
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Event describes the outcome of one note.
type Event struct {
	Note     core.Note
	Origin   string
	Outcome  Outcome
	RecordID string
	Err      error
}

// Reporter receives per-note progress.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }

// Stats is the run-level tally. Every processed note increments Total and
// exactly one of Synced, Skipped or Failed.
type Stats struct {
	Total   int
	Synced  int
	Skipped int
	Failed  int
	Errors  []error
}

func (s *Stats) add(ev Event) {
	s.Total++
	switch ev.Outcome {
	case Created:
		s.Synced++
	case Skipped:
		s.Skipped++
	default:
		s.Failed++
		if ev.Err != nil {
			s.Errors = append(s.Errors, ev.Err)
		}
	}
}
