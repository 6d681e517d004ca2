package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_Key(t *testing.T) {
	a := Note{Title: "t", Content: "c", Source: SourceGoogleKeep}
	b := Note{Title: "t", Content: "c", Source: SourceAppleNotes, Pinned: true}
	assert.Equal(t, a.Key(), b.Key(), "identity ignores everything but title and content")
	assert.NotEqual(t, a.Key(), Note{Title: "t", Content: "other"}.Key())
}

func TestNote_HasLabel(t *testing.T) {
	n := Note{Labels: []string{"home", "Work"}}
	assert.True(t, n.HasLabel("home"))
	assert.False(t, n.HasLabel("work"))
}

func TestChecklistText(t *testing.T) {
	got := ChecklistText([]ChecklistItem{{Text: "milk", Checked: true}, {Text: "eggs"}})
	assert.Equal(t, "[x] milk\n[ ] eggs", got)
	assert.Empty(t, ChecklistText(nil))
}

func TestBlocksText(t *testing.T) {
	got := BlocksText([]Block{
		{Type: BlockParagraph, Text: "intro"},
		{Type: BlockToDo, Text: "milk", Checked: true},
		{Type: BlockToDo, Text: "eggs"},
	})
	assert.Equal(t, "intro\n[x] milk\n[ ] eggs", got)
	assert.Empty(t, BlocksText(nil))
}

func TestISO(t *testing.T) {
	ts := time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2001-01-02T00:00:00", FormatISO(ts))

	withMicros := time.Date(2023, 11, 14, 22, 13, 20, 123456000, time.UTC)
	assert.Equal(t, "2023-11-14T22:13:20.123456", FormatISO(withMicros))

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2001-01-02T00:00:00", ts},
		{"2023-11-14T22:13:20.123456", withMicros},
		{"2001-01-02T01:00:00+01:00", ts},
		{"2001-01-02T00:00:00Z", ts},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISO(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseISO("yesterday")
	assert.Error(t, err)
}

func TestRecord_Title(t *testing.T) {
	r := Record{Properties: Properties{"Title": TitleValue("main")}}
	assert.Equal(t, "main", r.Title())

	renamed := Record{Properties: Properties{"Name": TitleValue("other"), "Body": RichTextValue("x")}}
	assert.Equal(t, "other", renamed.Title())

	assert.Empty(t, Record{}.Title())
}

func TestSameID(t *testing.T) {
	assert.True(t, SameID("1234abcd-0000-1111", "1234ABCD00001111"))
	assert.False(t, SameID("", ""))
	assert.False(t, SameID("abc", "abd"))
	assert.True(t, Record{ParentID: "a-b"}.InCollection("ab"))
}

func TestErrors_Taxonomy(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err      error
		sentinel error
	}{
		{&ConfigurationError{Field: "f", Reason: "r"}, ErrConfiguration},
		{&SourceReadError{Source: SourceGoogleKeep, Origin: "a.json", Err: cause}, ErrSourceRead},
		{&AuthenticationError{Source: SourceGoogleKeep, Err: cause}, ErrAuthentication},
		{&DestinationWriteError{Op: "create", Target: "x", Err: cause}, ErrDestinationWrite},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			if _, ok := tt.err.(*ConfigurationError); !ok {
				assert.ErrorIs(t, wrapped, cause)
			}
		})
	}
}

// pagedDest serves fixed pages keyed by cursor.
type pagedDest struct {
	Destination
	pages map[string]RecordPage
	fail  string
	calls []string
}

func (d *pagedDest) ListRecords(_ context.Context, _ string, cursor string) (RecordPage, error) {
	d.calls = append(d.calls, cursor)
	if cursor == d.fail && d.fail != "" {
		return RecordPage{}, errors.New("list failed")
	}
	return d.pages[cursor], nil
}

func threePages() map[string]RecordPage {
	return map[string]RecordPage{
		"":   {Records: []Record{{ID: "1"}, {ID: "2"}}, NextCursor: "c1", HasMore: true},
		"c1": {Records: []Record{{ID: "3"}}, NextCursor: "c2", HasMore: true},
		"c2": {Records: []Record{{ID: "4"}}},
	}
}

func TestAllRecords_FollowsCursor(t *testing.T) {
	d := &pagedDest{pages: threePages()}
	records, err := AllRecords(context.Background(), d, "col")
	require.NoError(t, err)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, []string{"", "c1", "c2"}, d.calls)
}

func TestAllRecords_Error(t *testing.T) {
	d := &pagedDest{pages: threePages(), fail: "c1"}
	records, err := AllRecords(context.Background(), d, "col")
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestPages_StopsEarly(t *testing.T) {
	d := &pagedDest{pages: threePages()}
	for range Pages(context.Background(), d, "col") {
		break
	}
	assert.Equal(t, []string{""}, d.calls)
}
