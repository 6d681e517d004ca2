package keep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

func collect(t *testing.T, r core.Reader) ([]core.RawRecord, []error) {
	t.Helper()
	var recs []core.RawRecord
	var errs []error
	for rec, err := range r.Records(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errs
}

func TestTakeoutReader_DecodesNotes(t *testing.T) {
	fsys := fstest.MapFS{
		"Keep/a.json": {Data: []byte(`{
			"title": "Groceries",
			"textContent": "",
			"isTrashed": false,
			"isArchived": true,
			"isPinned": true,
			"color": "YELLOW",
			"createdTimestampUsec": 1700000000000000,
			"userEditedTimestampUsec": 1700000100000000,
			"labels": [{"name": "home"}, {"name": "food"}],
			"listContent": [{"text": "milk", "isChecked": true}, {"text": "eggs", "checked": false}],
			"annotations": [{"url": ""}, {"url": "https://example.com"}]
		}`)},
		"Keep/b.json":     {Data: []byte(`{"title": "Plain", "textContent": "hello"}`)},
		"Keep/b.html":     {Data: []byte(`<html></html>`)},
		"Keep/Labels.txt": {Data: []byte("home\nfood\n")},
	}

	r, err := NewTakeoutReader("takeout", WithFS(fsys))
	require.NoError(t, err)
	assert.Equal(t, core.SourceGoogleKeep, r.Kind())

	recs, errs := collect(t, r)
	require.Empty(t, errs)
	require.Len(t, recs, 2)

	first, ok := recs[0].(core.KeepExportNote)
	require.True(t, ok)
	assert.Equal(t, "takeout/Keep/a.json", first.Path)
	assert.Equal(t, "Groceries", first.Title)
	assert.True(t, first.Archived)
	assert.True(t, first.Pinned)
	assert.Equal(t, "YELLOW", first.Color)
	assert.Equal(t, int64(1700000000000000), first.CreatedUsec)
	assert.Equal(t, int64(1700000100000000), first.UserEditedUsec)
	assert.Equal(t, []string{"home", "food"}, first.Labels)
	assert.Equal(t, []core.ChecklistItem{{Text: "milk", Checked: true}, {Text: "eggs"}}, first.ListContent)
	assert.Equal(t, "https://example.com", first.URL)

	second := recs[1].(core.KeepExportNote)
	assert.Equal(t, "Plain", second.Title)
	assert.Equal(t, "hello", second.TextContent)
}

func TestTakeoutReader_SkipsTrashed(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"title": "gone", "isTrashed": true}`)},
		"b.json": {Data: []byte(`{"title": "kept"}`)},
	}
	r, err := NewTakeoutReader("", WithFS(fsys))
	require.NoError(t, err)

	recs, errs := collect(t, r)
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0].(core.KeepExportNote).Title)
}

func TestTakeoutReader_InvalidFilesAreReported(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{not json`)},
		"b.json": {Data: []byte(`{"title": 42}`)},
		"c.json": {Data: []byte(`{"unrelated": true}`)},
		"d.json": {Data: []byte(`{"title": "ok"}`)},
	}
	r, err := NewTakeoutReader("", WithFS(fsys))
	require.NoError(t, err)

	recs, errs := collect(t, r)
	require.Len(t, recs, 1)
	require.Len(t, errs, 3)
	for _, err := range errs {
		assert.ErrorIs(t, err, core.ErrSourceRead)
		var sre *core.SourceReadError
		require.True(t, errors.As(err, &sre))
		assert.Equal(t, core.SourceGoogleKeep, sre.Source)
	}
}

func TestTakeoutReader_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Keep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Keep", "n.json"), []byte(`{"title": "disk"}`), 0o644))

	r, err := NewTakeoutReader(dir)
	require.NoError(t, err)

	recs, errs := collect(t, r)
	require.Empty(t, errs)
	require.Len(t, recs, 1)
	assert.Equal(t, "disk", recs[0].(core.KeepExportNote).Title)
}

func TestTakeoutReader_InvalidPattern(t *testing.T) {
	_, err := NewTakeoutReader("", WithPattern("[unclosed"))
	assert.Error(t, err)
}

func TestTakeoutReader_StopsEarly(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"title": "a"}`)},
		"b.json": {Data: []byte(`{"title": "b"}`)},
	}
	r, err := NewTakeoutReader("", WithFS(fsys))
	require.NoError(t, err)

	n := 0
	for range r.Records(context.Background()) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
