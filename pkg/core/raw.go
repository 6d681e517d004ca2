package core

import (
	"strconv"
	"time"
)

// RawRecord is a source-specific record before normalization.
// The set of variants is closed: KeepAPINote, KeepExportNote, AppleNotesRow
// and AppleNotesExportEntry.
type RawRecord interface {
	// Origin names the record for logs (file path, primary key, ...).
	Origin() string
	rawRecord()
}

// KeepAPINote is a note as returned by the Google Keep account API.
// Timestamps are already parsed; the zero time means absent.
type KeepAPINote struct {
	ID       string
	Title    string
	Text     string
	Trashed  bool
	Archived bool
	Pinned   bool
	Color    string
	Labels   []string
	Items    []ChecklistItem
	Created  time.Time
	Updated  time.Time
	URL      string
}

func (r KeepAPINote) Origin() string { return "keep:" + r.ID }
func (KeepAPINote) rawRecord()       {}

// KeepExportNote is a note decoded from a Google Takeout Keep JSON file.
// Timestamps are epoch microseconds; zero means absent.
type KeepExportNote struct {
	Path           string
	Title          string
	TextContent    string
	Trashed        bool
	Archived       bool
	Pinned         bool
	Color          string
	Labels         []string
	ListContent    []ChecklistItem
	CreatedUsec    int64
	UserEditedUsec int64
	URL            string
}

func (r KeepExportNote) Origin() string { return r.Path }
func (KeepExportNote) rawRecord()       {}

// AppleNotesRow is a row of the live Apple Notes store.
// Timestamps are seconds since 2001-01-01T00:00:00 UTC; nil means absent.
// Data holds the (usually gzip-compressed) note body.
type AppleNotesRow struct {
	PK       int64
	Title    string
	Snippet  string
	Created  *float64
	Modified *float64
	Data     []byte
}

func (r AppleNotesRow) Origin() string { return "applenotes:" + strconv.FormatInt(r.PK, 10) }
func (AppleNotesRow) rawRecord()       {}

// AppleNotesExportEntry is one note folder of a markdown export.
// Markdown is the content of the first .md file found; it is nil when the
// folder has none.
type AppleNotesExportEntry struct {
	Dir       string
	Name      string
	Markdown  []byte
	SourceTag string
}

func (r AppleNotesExportEntry) Origin() string { return r.Dir }
func (AppleNotesExportEntry) rawRecord()       {}
