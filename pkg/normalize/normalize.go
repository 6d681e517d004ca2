package normalize

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notesync/pkg/core"
)

// AppleEpoch is the reference date of Apple Core Data timestamps.
var AppleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultAppleSourceTag labels notes read from a markdown export.
const DefaultAppleSourceTag = "Apple Notes"

// Normalize produces exactly one Note from a raw record.
func Normalize(raw core.RawRecord) (core.Note, error) {
	switch r := raw.(type) {
	case core.KeepAPINote:
		return fromKeepAPI(r), nil
	case core.KeepExportNote:
		return fromKeepExport(r), nil
	case core.AppleNotesRow:
		return fromAppleRow(r), nil
	case core.AppleNotesExportEntry:
		return fromAppleExport(r), nil
	case nil:
		return core.Note{}, fmt.Errorf("nil raw record")
	default:
		return core.Note{}, fmt.Errorf("unsupported raw record %T", raw)
	}
}

func fromKeepAPI(r core.KeepAPINote) core.Note {
	n := core.Note{
		Title:       titleOrDefault(r.Title),
		Content:     r.Text,
		Source:      core.SourceGoogleKeep,
		CreatedTime: timePtr(r.Created),
		UpdatedTime: timePtr(r.Updated),
		Archived:    r.Archived,
		Pinned:      r.Pinned,
		Color:       keepColor(r.Color),
		Labels:      uniqueLabels(r.Labels),
		URL:         r.URL,
	}
	applyChecklist(&n, r.Items)
	return n
}

func fromKeepExport(r core.KeepExportNote) core.Note {
	n := core.Note{
		Title:       titleOrDefault(r.Title),
		Content:     r.TextContent,
		Source:      core.SourceGoogleKeep,
		CreatedTime: FromEpochMicros(r.CreatedUsec),
		UpdatedTime: FromEpochMicros(r.UserEditedUsec),
		Archived:    r.Archived,
		Pinned:      r.Pinned,
		Color:       keepColor(r.Color),
		Labels:      uniqueLabels(r.Labels),
		URL:         r.URL,
	}
	applyChecklist(&n, r.ListContent)
	return n
}

// applyChecklist replaces the note content with one "[x] text" line per item.
func applyChecklist(n *core.Note, items []core.ChecklistItem) {
	if len(items) == 0 {
		return
	}
	n.Checklist = append([]core.ChecklistItem(nil), items...)
	n.Content = core.ChecklistText(items)
}

func fromAppleRow(r core.AppleNotesRow) core.Note {
	content := r.Snippet
	if len(r.Data) > 0 {
		if text, err := decompressBody(r.Data); err == nil {
			content = text
		}
	}
	return core.Note{
		Title:       titleOrDefault(r.Title),
		Content:     content,
		Source:      core.SourceAppleNotes,
		CreatedTime: FromAppleOffset(r.Created),
		UpdatedTime: FromAppleOffset(r.Modified),
	}
}

func fromAppleExport(r core.AppleNotesExportEntry) core.Note {
	tag := r.SourceTag
	if tag == "" {
		tag = DefaultAppleSourceTag
	}
	return core.Note{
		Title:   titleOrDefault(r.Name),
		Content: strings.TrimSpace(stripFrontmatter(r.Markdown)),
		Source:  core.SourceAppleNotes,
		Labels:  []string{tag},
	}
}

// FromEpochMicros converts Keep's microsecond timestamps. Zero means absent.
func FromEpochMicros(usec int64) *time.Time {
	if usec == 0 {
		return nil
	}
	t := time.UnixMicro(usec).UTC()
	return &t
}

// FromAppleOffset converts seconds since AppleEpoch. Nil means absent.
func FromAppleOffset(seconds *float64) *time.Time {
	if seconds == nil {
		return nil
	}
	t := AppleEpoch.Add(time.Duration(*seconds * float64(time.Second)))
	return &t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func titleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return core.UntitledTitle
	}
	return title
}

// keepColor maps Keep's color names to the destination's select options.
// The default (white) color is treated as absent.
func keepColor(color string) string {
	color = strings.ToUpper(strings.TrimSpace(color))
	switch color {
	case "", "DEFAULT", "WHITE":
		return ""
	}
	return color
}

func uniqueLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// decompressBody gunzips an Apple Notes body blob and keeps its printable text.
func decompressBody(data []byte) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return printable(string(raw)), nil
}

// printable drops invalid UTF-8 and control characters other than line breaks and tabs.
func printable(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

// stripFrontmatter removes a leading YAML frontmatter block delimited by ---.
// Input without a well-formed block is returned as is.
func stripFrontmatter(data []byte) string {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return string(data)
	}
	parts := bytes.SplitN(data[3:], []byte("\n---"), 2)
	if len(parts) == 1 {
		return string(data)
	}
	var meta map[string]any
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return string(data)
	}
	body := strings.TrimPrefix(string(parts[1]), "\r")
	return strings.TrimPrefix(body, "\n")
}
