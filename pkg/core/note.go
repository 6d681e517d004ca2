package core

import (
	"strings"
	"time"
)

// UntitledTitle is used when a source record carries no title.
const UntitledTitle = "Untitled"

// Source identifies where a note came from.
type Source string

const (
	SourceGoogleKeep Source = "Google Keep"
	SourceAppleNotes Source = "Apple Notes"
)

// ChecklistItem is a single entry of a checklist note.
type ChecklistItem struct {
	Text    string
	Checked bool
}

// Note is the canonical, source-agnostic shape every reader is normalized into.
// It lives for a single run and is never persisted locally.
type Note struct {
	Title       string
	Content     string
	Source      Source
	CreatedTime *time.Time
	UpdatedTime *time.Time
	Archived    bool
	Pinned      bool
	Color       string
	Labels      []string
	Checklist   []ChecklistItem
	URL         string
}

// Key is the identity of a note for duplicate detection.
// A title-only key leaves Content empty.
type Key struct {
	Title   string
	Content string
}

// Key returns the (title, content) identity of the note.
func (n Note) Key() Key {
	return Key{Title: n.Title, Content: n.Content}
}

// HasLabel reports whether the note carries the given label.
func (n Note) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ChecklistText renders checklist items one per line with a "[x] " or "[ ] " prefix.
func ChecklistText(items []ChecklistItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		lines = append(lines, "["+mark+"] "+item.Text)
	}
	return strings.Join(lines, "\n")
}

// isoLayout matches the destination's naive ISO-8601 date-time format.
const isoLayout = "2006-01-02T15:04:05.999999"

// FormatISO renders t in UTC as an ISO-8601 date-time without zone suffix.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISO is the inverse of FormatISO. It also accepts RFC 3339 input.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(isoLayout, s, time.UTC)
}
