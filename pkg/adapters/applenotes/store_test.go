package applenotes

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func createStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "NoteStore.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE ZICNOTEDATA (Z_PK INTEGER PRIMARY KEY, ZDATA BLOB)`,
		`CREATE TABLE ZICCLOUDSYNCINGOBJECT (
			Z_PK INTEGER PRIMARY KEY,
			ZTITLE1 TEXT,
			ZSNIPPET TEXT,
			ZCREATIONDATE1 REAL,
			ZMODIFICATIONDATE1 REAL,
			ZMARKEDFORDELETION INTEGER DEFAULT 0,
			ZNOTEDATA INTEGER
		)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}

	_, err = db.Exec(`INSERT INTO ZICNOTEDATA (Z_PK, ZDATA) VALUES (1, ?), (2, ?)`, gz(t, "full body"), []byte("not gzip"))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ZICCLOUDSYNCINGOBJECT
		(Z_PK, ZTITLE1, ZSNIPPET, ZCREATIONDATE1, ZMODIFICATIONDATE1, ZMARKEDFORDELETION, ZNOTEDATA) VALUES
		(10, 'Older', 'older snippet', 0, 100, 0, 1),
		(11, 'Newer', 'newer snippet', 86400, 200, 0, 2),
		(12, 'Deleted', 'x', 0, 300, 1, NULL),
		(13, NULL, 'folder row', 0, 400, 0, NULL),
		(14, 'No dates', NULL, NULL, NULL, 0, NULL)`)
	require.NoError(t, err)
	return path
}

func TestStoreReader_Records(t *testing.T) {
	path := createStore(t)
	r := NewStoreReader(path, nil)
	assert.Equal(t, core.SourceAppleNotes, r.Kind())

	var rows []core.AppleNotesRow
	for rec, err := range r.Records(context.Background()) {
		require.NoError(t, err)
		rows = append(rows, rec.(core.AppleNotesRow))
	}

	require.Len(t, rows, 3)
	assert.Equal(t, "Newer", rows[0].Title)
	assert.Equal(t, "Older", rows[1].Title)
	assert.Equal(t, "No dates", rows[2].Title)

	assert.Equal(t, int64(11), rows[0].PK)
	require.NotNil(t, rows[0].Created)
	assert.Equal(t, 86400.0, *rows[0].Created)
	assert.Equal(t, []byte("not gzip"), rows[0].Data)

	assert.Equal(t, gz(t, "full body"), rows[1].Data)
	assert.Equal(t, "older snippet", rows[1].Snippet)

	assert.Nil(t, rows[2].Created)
	assert.Nil(t, rows[2].Modified)
	assert.Empty(t, rows[2].Snippet)
	assert.Nil(t, rows[2].Data)
}

func TestStoreReader_MissingDatabase(t *testing.T) {
	r := NewStoreReader(filepath.Join(t.TempDir(), "missing.sqlite"), nil)

	var errs []error
	for rec, err := range r.Records(context.Background()) {
		assert.Nil(t, rec)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], core.ErrSourceRead)
}

func TestStoreReader_NotANoteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r := NewStoreReader(path, nil)
	var errs []error
	for _, err := range r.Records(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], core.ErrSourceRead)
}
