// Package applenotes reads Apple Notes, either from the live NoteStore
// SQLite database or from a folder-per-note markdown export.
package applenotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/aretw0/notesync/pkg/core"
)

const notesQuery = `
SELECT
	n.Z_PK,
	n.ZTITLE1,
	n.ZSNIPPET,
	n.ZCREATIONDATE1,
	n.ZMODIFICATIONDATE1,
	d.ZDATA
FROM ZICCLOUDSYNCINGOBJECT n
LEFT JOIN ZICNOTEDATA d ON n.ZNOTEDATA = d.Z_PK
WHERE n.ZTITLE1 IS NOT NULL
	AND n.ZMARKEDFORDELETION = 0
ORDER BY n.ZMODIFICATIONDATE1 DESC`

// StoreReader reads notes from a NoteStore.sqlite file, opened read-only.
type StoreReader struct {
	path   string
	logger *slog.Logger
}

// NewStoreReader creates a reader for the database at path.
func NewStoreReader(path string, logger *slog.Logger) *StoreReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StoreReader{path: path, logger: logger}
}

// Kind implements core.Reader.
func (r *StoreReader) Kind() core.Source { return core.SourceAppleNotes }

// dsn is a read-only SQLite URI for the database file.
func (r *StoreReader) dsn() string {
	path := r.path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}
	return u.String()
}

// Records yields one AppleNotesRow per live note, most recently modified
// first. A missing or unreadable database yields a single error.
func (r *StoreReader) Records(ctx context.Context) iter.Seq2[core.RawRecord, error] {
	return func(yield func(core.RawRecord, error) bool) {
		fail := func(err error) {
			yield(nil, &core.SourceReadError{Source: core.SourceAppleNotes, Origin: r.path, Err: err})
		}

		if _, err := os.Stat(r.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("apple notes database not found: %w", err)
			}
			fail(err)
			return
		}

		db, err := sql.Open("sqlite3", r.dsn())
		if err != nil {
			fail(err)
			return
		}
		defer db.Close()

		rows, err := db.QueryContext(ctx, notesQuery)
		if err != nil {
			fail(fmt.Errorf("query notes: %w", err))
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				row      core.AppleNotesRow
				title    sql.NullString
				snippet  sql.NullString
				created  sql.NullFloat64
				modified sql.NullFloat64
			)
			if err := rows.Scan(&row.PK, &title, &snippet, &created, &modified, &row.Data); err != nil {
				if !yield(nil, &core.SourceReadError{Source: core.SourceAppleNotes, Origin: r.path, Err: err}) {
					return
				}
				continue
			}
			row.Title = title.String
			row.Snippet = snippet.String
			if created.Valid {
				row.Created = &created.Float64
			}
			if modified.Valid {
				row.Modified = &modified.Float64
			}
			count++
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			fail(err)
			return
		}
		r.logger.Debug("apple notes read", "path", r.path, "count", count)
	}
}

var _ core.Reader = (*StoreReader)(nil)
