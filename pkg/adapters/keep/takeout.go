// Package keep reads Google Keep notes, either from a Google Takeout export
// or through an account client.
package keep

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/aretw0/notesync/pkg/core"
)

// DefaultPattern matches every note file of a Takeout Keep folder.
const DefaultPattern = "**/*.json"

//go:embed keep_note.schema.json
var noteSchemaJSON []byte

// takeoutNote is the JSON shape of one Takeout note file.
type takeoutNote struct {
	Title                   string `json:"title"`
	TextContent             string `json:"textContent"`
	IsTrashed               bool   `json:"isTrashed"`
	IsArchived              bool   `json:"isArchived"`
	IsPinned                bool   `json:"isPinned"`
	Color                   string `json:"color"`
	CreatedTimestampUsec    int64  `json:"createdTimestampUsec"`
	UserEditedTimestampUsec int64  `json:"userEditedTimestampUsec"`
	Labels                  []struct {
		Name string `json:"name"`
	} `json:"labels"`
	ListContent []struct {
		Text      string `json:"text"`
		IsChecked bool   `json:"isChecked"`
		Checked   bool   `json:"checked"`
	} `json:"listContent"`
	Annotations []struct {
		URL string `json:"url"`
	} `json:"annotations"`
}

// TakeoutReader reads the JSON files of a Takeout Keep folder.
type TakeoutReader struct {
	fsys    fs.FS
	dir     string
	pattern string
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

// TakeoutOption configures a TakeoutReader.
type TakeoutOption func(*TakeoutReader)

// WithPattern overrides the doublestar pattern selecting note files.
func WithPattern(pattern string) TakeoutOption {
	return func(r *TakeoutReader) {
		if pattern != "" {
			r.pattern = pattern
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TakeoutOption {
	return func(r *TakeoutReader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFS reads from fsys instead of the directory on disk.
func WithFS(fsys fs.FS) TakeoutOption {
	return func(r *TakeoutReader) { r.fsys = fsys }
}

// NewTakeoutReader creates a reader for the Takeout folder dir.
func NewTakeoutReader(dir string, opts ...TakeoutOption) (*TakeoutReader, error) {
	schema, err := compileNoteSchema()
	if err != nil {
		return nil, err
	}
	r := &TakeoutReader{
		dir:     dir,
		pattern: DefaultPattern,
		schema:  schema,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !doublestar.ValidatePattern(r.pattern) {
		return nil, fmt.Errorf("invalid pattern %q", r.pattern)
	}
	if r.fsys == nil {
		r.fsys = os.DirFS(dir)
	}
	return r, nil
}

func compileNoteSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(noteSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("keep note schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("keep-note.json", doc); err != nil {
		return nil, fmt.Errorf("keep note schema: %w", err)
	}
	return c.Compile("keep-note.json")
}

// Kind implements core.Reader.
func (r *TakeoutReader) Kind() core.Source { return core.SourceGoogleKeep }

// Records yields one KeepExportNote per valid, non-trashed file, in path
// order. Unreadable or malformed files yield a *core.SourceReadError.
func (r *TakeoutReader) Records(ctx context.Context) iter.Seq2[core.RawRecord, error] {
	return func(yield func(core.RawRecord, error) bool) {
		matches, err := doublestar.Glob(r.fsys, r.pattern, doublestar.WithFilesOnly())
		if err != nil {
			yield(nil, &core.SourceReadError{Source: core.SourceGoogleKeep, Origin: r.dir, Err: err})
			return
		}
		sort.Strings(matches)
		r.logger.Debug("takeout files found", "dir", r.dir, "count", len(matches))

		for _, path := range matches {
			if err := ctx.Err(); err != nil {
				return
			}
			note, err := r.readNote(path)
			if err != nil {
				origin := r.origin(path)
				if !yield(nil, &core.SourceReadError{Source: core.SourceGoogleKeep, Origin: origin, Err: err}) {
					return
				}
				continue
			}
			if note.Trashed {
				r.logger.Debug("skipping trashed note", "file", path)
				continue
			}
			if !yield(note, nil) {
				return
			}
		}
	}
}

func (r *TakeoutReader) origin(path string) string {
	if r.dir == "" {
		return path
	}
	return strings.TrimSuffix(r.dir, "/") + "/" + path
}

func (r *TakeoutReader) readNote(path string) (core.KeepExportNote, error) {
	data, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		return core.KeepExportNote{}, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return core.KeepExportNote{}, fmt.Errorf("invalid json: %w", err)
	}
	if err := r.schema.Validate(inst); err != nil {
		return core.KeepExportNote{}, fmt.Errorf("not a keep note: %w", err)
	}

	var raw takeoutNote
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.KeepExportNote{}, fmt.Errorf("invalid json: %w", err)
	}

	note := core.KeepExportNote{
		Path:           r.origin(path),
		Title:          raw.Title,
		TextContent:    raw.TextContent,
		Trashed:        raw.IsTrashed,
		Archived:       raw.IsArchived,
		Pinned:         raw.IsPinned,
		Color:          raw.Color,
		CreatedUsec:    raw.CreatedTimestampUsec,
		UserEditedUsec: raw.UserEditedTimestampUsec,
	}
	for _, l := range raw.Labels {
		note.Labels = append(note.Labels, l.Name)
	}
	for _, item := range raw.ListContent {
		note.ListContent = append(note.ListContent, core.ChecklistItem{
			Text:    item.Text,
			Checked: item.IsChecked || item.Checked,
		})
	}
	for _, a := range raw.Annotations {
		if a.URL != "" {
			note.URL = a.URL
			break
		}
	}
	return note, nil
}

var _ core.Reader = (*TakeoutReader)(nil)
