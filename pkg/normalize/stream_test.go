package normalize

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

type fakeReader struct {
	kind    core.Source
	records []core.RawRecord
	errs    []error
	authErr error
}

func (f *fakeReader) Kind() core.Source { return f.kind }

func (f *fakeReader) Records(ctx context.Context) iter.Seq2[core.RawRecord, error] {
	return func(yield func(core.RawRecord, error) bool) {
		for i, r := range f.records {
			var err error
			if i < len(f.errs) {
				err = f.errs[i]
			}
			if !yield(r, err) {
				return
			}
		}
	}
}

type authReader struct{ *fakeReader }

func (a authReader) Authenticate(ctx context.Context) error {
	return a.authErr
}

func TestStream_ReadErrorsAreSkippable(t *testing.T) {
	reader := &fakeReader{
		kind: core.SourceGoogleKeep,
		records: []core.RawRecord{
			core.KeepExportNote{Path: "a.json", Title: "A"},
			core.KeepExportNote{Path: "b.json"},
			core.KeepExportNote{Path: "c.json", Title: "C"},
		},
		errs: []error{nil, errors.New("bad json"), nil},
	}

	notes, errs := Collect(Stream(context.Background(), nil, reader))
	require.Len(t, notes, 2)
	assert.Equal(t, "A", notes[0].Title)
	assert.Equal(t, "C", notes[1].Title)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], core.ErrSourceRead)
	var sre *core.SourceReadError
	require.ErrorAs(t, errs[0], &sre)
	assert.Equal(t, "b.json", sre.Origin)
}

func TestStream_AuthenticationFailureSkipsSource(t *testing.T) {
	failing := authReader{&fakeReader{
		kind:    core.SourceGoogleKeep,
		records: []core.RawRecord{core.KeepAPINote{Title: "never"}},
		authErr: errors.New("bad credentials"),
	}}
	working := &fakeReader{
		kind:    core.SourceAppleNotes,
		records: []core.RawRecord{core.AppleNotesExportEntry{Name: "kept"}},
	}

	notes, errs := Collect(Stream(context.Background(), nil, failing, working))
	assert.Empty(t, errs)
	require.Len(t, notes, 1)
	assert.Equal(t, "kept", notes[0].Title)
}

func TestStream_PreservesReaderOrder(t *testing.T) {
	first := &fakeReader{kind: core.SourceGoogleKeep, records: []core.RawRecord{
		core.KeepExportNote{Title: "1"}, core.KeepExportNote{Title: "2"},
	}}
	second := &fakeReader{kind: core.SourceAppleNotes, records: []core.RawRecord{
		core.AppleNotesExportEntry{Name: "3"},
	}}

	var titles []string
	for res := range Stream(context.Background(), nil, first, nil, second) {
		require.True(t, res.OK())
		titles = append(titles, res.Note.Title)
	}
	assert.Equal(t, []string{"1", "2", "3"}, titles)
}

func TestStream_StopsWhenConsumerStops(t *testing.T) {
	reader := &fakeReader{kind: core.SourceGoogleKeep, records: []core.RawRecord{
		core.KeepExportNote{Title: "1"}, core.KeepExportNote{Title: "2"},
	}}
	count := 0
	for range Stream(context.Background(), nil, reader) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
