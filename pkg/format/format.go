// Package format maps canonical notes onto the destination's page
// representation: typed properties plus content blocks.
package format

import (
	"fmt"
	"strings"

	"github.com/aretw0/notesync/pkg/core"
)

const (
	// TitleLimit is the page-title limit applied by the simple schema.
	TitleLimit = 100
	// BlockLimit is the per-block (and per rich_text value) character limit.
	BlockLimit = 2000
)

// Property names used by the two supported collection schemas.
const (
	PropTitle       = core.TitlePropertyName
	PropContent     = "Content"
	PropLabels      = "Labels"
	PropCreatedDate = "Created Date"

	PropSource   = "Source"
	PropCreated  = "Created"
	PropUpdated  = "Updated"
	PropArchived = "Archived"
	PropPinned   = "Pinned"
	PropColor    = "Color"
	PropTags     = "Tags"
)

// Schema selects how a note is laid out in the destination.
type Schema int

const (
	// SchemaBlocks writes structured properties and the body as child blocks.
	SchemaBlocks Schema = iota
	// SchemaSimple writes the body into a scalar "Content" property.
	SchemaSimple
)

func (s Schema) String() string {
	switch s {
	case SchemaSimple:
		return "simple"
	default:
		return "blocks"
	}
}

// ParseSchema parses "simple" or "blocks". The empty string and "auto"
// return ok=false so the caller can detect the schema instead.
func ParseSchema(name string) (schema Schema, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return SchemaBlocks, false, nil
	case "simple", "content":
		return SchemaSimple, true, nil
	case "blocks", "block", "database":
		return SchemaBlocks, true, nil
	default:
		return SchemaBlocks, false, fmt.Errorf("unknown schema %q (want auto, simple or blocks)", name)
	}
}

// DetectSchema picks the simple schema when the collection has a "Content"
// rich_text property, and the block schema otherwise.
func DetectSchema(c core.Collection) Schema {
	if c.Properties[PropContent] == core.PropertyRichText {
		return SchemaSimple
	}
	return SchemaBlocks
}

// Page is a formatted note, ready for core.Destination.CreateRecord.
type Page struct {
	Properties core.Properties
	Blocks     []core.Block
}

// Formatter converts notes for one schema.
type Formatter struct {
	schema Schema
}

// New creates a Formatter for the given schema.
func New(schema Schema) *Formatter {
	return &Formatter{schema: schema}
}

// Schema returns the formatter's schema.
func (f *Formatter) Schema() Schema { return f.schema }

// CreatedProperty is the name of the created-date property in this schema.
func (f *Formatter) CreatedProperty() string {
	if f.schema == SchemaSimple {
		return PropCreatedDate
	}
	return PropCreated
}

// LabelsProperty is the name of the multi-select label property in this schema.
func (f *Formatter) LabelsProperty() string {
	if f.schema == SchemaSimple {
		return PropLabels
	}
	return PropTags
}

// Title is the note title as this schema stores it. Existence checks
// compare against it so notes with long titles are still found.
func (f *Formatter) Title(n core.Note) string {
	if f.schema == SchemaSimple {
		return Truncate(n.Title, TitleLimit)
	}
	return n.Title
}

// Format maps a note to properties and blocks. Absent optional fields are
// omitted entirely rather than sent as empty values.
func (f *Formatter) Format(n core.Note) Page {
	if f.schema == SchemaSimple {
		return formatSimple(n)
	}
	return formatBlocks(n)
}

func formatSimple(n core.Note) Page {
	props := core.Properties{
		PropTitle: core.TitleValue(Truncate(n.Title, TitleLimit)),
	}
	if n.Content != "" {
		props[PropContent] = core.RichTextValue(Truncate(n.Content, BlockLimit))
	}
	if len(n.Labels) > 0 {
		props[PropLabels] = core.MultiSelectValue(append([]string(nil), n.Labels...))
	}
	if n.CreatedTime != nil {
		props[PropCreatedDate] = core.DateValue(core.FormatISO(*n.CreatedTime))
	}
	return Page{Properties: props}
}

func formatBlocks(n core.Note) Page {
	props := core.Properties{
		PropTitle: core.TitleValue(n.Title),
	}
	if n.Source != "" {
		props[PropSource] = core.SelectValue(string(n.Source))
	}
	if n.CreatedTime != nil {
		props[PropCreated] = core.DateValue(core.FormatISO(*n.CreatedTime))
	}
	if n.UpdatedTime != nil {
		props[PropUpdated] = core.DateValue(core.FormatISO(*n.UpdatedTime))
	}
	if n.Archived {
		props[PropArchived] = core.CheckboxValue(true)
	}
	if n.Pinned {
		props[PropPinned] = core.CheckboxValue(true)
	}
	if n.Color != "" {
		props[PropColor] = core.SelectValue(n.Color)
	}
	if len(n.Labels) > 0 {
		props[PropTags] = core.MultiSelectValue(append([]string(nil), n.Labels...))
	}

	var blocks []core.Block
	if len(n.Checklist) > 0 {
		for _, item := range n.Checklist {
			blocks = append(blocks, core.Block{
				Type:    core.BlockToDo,
				Text:    Truncate(item.Text, BlockLimit),
				Checked: item.Checked,
			})
		}
	} else {
		blocks = Paragraphs(n.Content)
	}
	if n.URL != "" {
		blocks = append(blocks, core.Block{Type: core.BlockParagraph, Text: "URL: " + n.URL})
	}
	return Page{Properties: props, Blocks: blocks}
}

// Paragraphs splits text on newlines into paragraph blocks, skipping blank
// lines and truncating each paragraph to BlockLimit.
func Paragraphs(text string) []core.Block {
	if text == "" {
		return nil
	}
	var blocks []core.Block
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, core.Block{
			Type: core.BlockParagraph,
			Text: Truncate(line, BlockLimit),
		})
	}
	return blocks
}

// Truncate cuts s to at most limit characters (runes).
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
