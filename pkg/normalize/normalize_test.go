package normalize

import (
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

func TestNormalize_MissingOptionalFields(t *testing.T) {
	tests := []struct {
		name string
		raw  core.RawRecord
	}{
		{"keep api", core.KeepAPINote{}},
		{"keep export", core.KeepExportNote{}},
		{"apple row", core.AppleNotesRow{}},
		{"apple export", core.AppleNotesExportEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, core.UntitledTitle, n.Title)
			assert.Nil(t, n.CreatedTime)
			assert.Nil(t, n.UpdatedTime)
			assert.False(t, n.Archived)
			assert.False(t, n.Pinned)
			assert.Empty(t, n.Color)
			assert.Empty(t, n.Checklist)
		})
	}
}

func TestNormalize_UnsupportedRecord(t *testing.T) {
	_, err := Normalize(nil)
	assert.Error(t, err)
}

func TestFromAppleOffset(t *testing.T) {
	tests := []struct {
		offset float64
		want   string
	}{
		{0, "2001-01-01T00:00:00"},
		{86400, "2001-01-02T00:00:00"},
		{1.5, "2001-01-01T00:00:01.5"},
	}
	for _, tt := range tests {
		got := FromAppleOffset(&tt.offset)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, core.FormatISO(*got))
	}
	assert.Nil(t, FromAppleOffset(nil))
}

func TestFromEpochMicros(t *testing.T) {
	assert.Nil(t, FromEpochMicros(0))

	got := FromEpochMicros(1700000000123456)
	require.NotNil(t, got)
	assert.Equal(t, "2023-11-14T22:13:20.123456", core.FormatISO(*got))
}

func TestNormalize_Checklist(t *testing.T) {
	items := []core.ChecklistItem{
		{Text: "buy milk", Checked: false},
		{Text: "call mom", Checked: true},
	}

	fromExport, err := Normalize(core.KeepExportNote{Title: "Todo", TextContent: "ignored", ListContent: items})
	require.NoError(t, err)
	assert.Equal(t, "[ ] buy milk\n[x] call mom", fromExport.Content)
	assert.Equal(t, items, fromExport.Checklist)

	fromAPI, err := Normalize(core.KeepAPINote{Title: "Todo", Items: items})
	require.NoError(t, err)
	assert.Equal(t, fromExport.Content, fromAPI.Content)
}

func TestNormalize_KeepAPI(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	n, err := Normalize(core.KeepAPINote{
		Title:    "Groceries",
		Text:     "milk, eggs",
		Pinned:   true,
		Color:    "red",
		Labels:   []string{"home", "home", " ", "errands"},
		Created:  created,
		URL:      "https://keep.google.com/#NOTE/1",
		Archived: true,
	})
	require.NoError(t, err)

	assert.Equal(t, core.SourceGoogleKeep, n.Source)
	assert.Equal(t, "milk, eggs", n.Content)
	assert.Equal(t, "RED", n.Color)
	assert.Equal(t, []string{"home", "errands"}, n.Labels)
	require.NotNil(t, n.CreatedTime)
	assert.Equal(t, "2024-03-01T09:00:00", core.FormatISO(*n.CreatedTime))
	assert.Nil(t, n.UpdatedTime)
	assert.True(t, n.Pinned)
	assert.True(t, n.Archived)
	assert.Equal(t, "https://keep.google.com/#NOTE/1", n.URL)
}

func TestNormalize_KeepDefaultColorIsAbsent(t *testing.T) {
	n, err := Normalize(core.KeepExportNote{Title: "x", Color: "DEFAULT"})
	require.NoError(t, err)
	assert.Empty(t, n.Color)
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNormalize_AppleRowBody(t *testing.T) {
	t.Run("decompresses body", func(t *testing.T) {
		n, err := Normalize(core.AppleNotesRow{Title: "Recipe", Snippet: "snip", Data: gzipped(t, "flour\x00\x01\nsugar")})
		require.NoError(t, err)
		assert.Equal(t, "flour\nsugar", n.Content)
		assert.Equal(t, core.SourceAppleNotes, n.Source)
		assert.Empty(t, n.Labels)
	})

	t.Run("falls back to snippet", func(t *testing.T) {
		n, err := Normalize(core.AppleNotesRow{Title: "Recipe", Snippet: "snip", Data: []byte("not gzip")})
		require.NoError(t, err)
		assert.Equal(t, "snip", n.Content)
	})

	t.Run("converts timestamps", func(t *testing.T) {
		created, modified := 0.0, 86400.0
		n, err := Normalize(core.AppleNotesRow{Title: "Recipe", Created: &created, Modified: &modified})
		require.NoError(t, err)
		assert.Equal(t, "2001-01-01T00:00:00", core.FormatISO(*n.CreatedTime))
		assert.Equal(t, "2001-01-02T00:00:00", core.FormatISO(*n.UpdatedTime))
	})
}

func TestNormalize_AppleExport(t *testing.T) {
	tests := []struct {
		name        string
		markdown    string
		tag         string
		wantContent string
		wantLabels  []string
	}{
		{
			name:        "Plain",
			markdown:    "  # Trip\n\nPack bags\n\n",
			wantContent: "# Trip\n\nPack bags",
			wantLabels:  []string{"Apple Notes"},
		},
		{
			name:        "Frontmatter",
			markdown:    "---\ncreated: 2020-01-01\n---\nBody",
			wantContent: "Body",
			wantLabels:  []string{"Apple Notes"},
		},
		{
			name:        "Broken Frontmatter Kept",
			markdown:    "---\nno closing fence",
			wantContent: "---\nno closing fence",
			wantLabels:  []string{"Apple Notes"},
		},
		{
			name:        "Custom Tag",
			markdown:    "x",
			tag:         "source",
			wantContent: "x",
			wantLabels:  []string{"source"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(core.AppleNotesExportEntry{Name: "Trip", Markdown: []byte(tt.markdown), SourceTag: tt.tag})
			require.NoError(t, err)
			assert.Equal(t, "Trip", n.Title)
			assert.Equal(t, tt.wantContent, n.Content)
			assert.Equal(t, tt.wantLabels, n.Labels)
			assert.Nil(t, n.CreatedTime)
		})
	}
}
