package applenotes

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/notesync/pkg/core"
)

// ExportReader reads a markdown export laid out as one folder per note.
// The folder name is the title and the first .md file inside is the body.
type ExportReader struct {
	dir    string
	tag    string
	fsys   fs.FS
	logger *slog.Logger
}

// NewExportReader creates a reader for the export folder dir. Every note is
// labeled with tag.
func NewExportReader(dir, tag string, logger *slog.Logger) *ExportReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExportReader{dir: dir, tag: tag, fsys: os.DirFS(dir), logger: logger}
}

// Kind implements core.Reader.
func (r *ExportReader) Kind() core.Source { return core.SourceAppleNotes }

// Records yields one AppleNotesExportEntry per note folder, in name order.
// Hidden entries and plain files at the top level are ignored.
func (r *ExportReader) Records(ctx context.Context) iter.Seq2[core.RawRecord, error] {
	return func(yield func(core.RawRecord, error) bool) {
		entries, err := fs.ReadDir(r.fsys, ".")
		if err != nil {
			yield(nil, &core.SourceReadError{Source: core.SourceAppleNotes, Origin: r.dir, Err: err})
			return
		}

		for _, e := range entries {
			if ctx.Err() != nil {
				return
			}
			name := e.Name()
			if !e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			entry, err := r.readEntry(name)
			if err != nil {
				if !yield(nil, &core.SourceReadError{Source: core.SourceAppleNotes, Origin: entry.Dir, Err: err}) {
					return
				}
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func (r *ExportReader) readEntry(name string) (core.AppleNotesExportEntry, error) {
	entry := core.AppleNotesExportEntry{
		Dir:       filepath.Join(r.dir, name),
		Name:      name,
		SourceTag: r.tag,
	}
	files, err := fs.ReadDir(r.fsys, name)
	if err != nil {
		return entry, err
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(r.fsys, path.Join(name, f.Name()))
		if err != nil {
			return entry, err
		}
		entry.Markdown = data
		break
	}
	if entry.Markdown == nil {
		r.logger.Debug("note folder has no markdown file", "dir", entry.Dir)
	}
	return entry, nil
}

var _ core.Reader = (*ExportReader)(nil)
