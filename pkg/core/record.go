package core

import "strings"

// PropertyType is the destination-defined type of a record property.
type PropertyType string

const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyCheckbox    PropertyType = "checkbox"
	PropertyDate        PropertyType = "date"
)

// Property is a typed property value. Only the field matching Type is meaningful.
type Property struct {
	Type    PropertyType `json:"type" yaml:"type"`
	Text    string       `json:"text,omitempty" yaml:"text,omitempty"`       // title, rich_text
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`       // select
	Names   []string     `json:"names,omitempty" yaml:"names,omitempty"`     // multi_select
	Checked bool         `json:"checked,omitempty" yaml:"checked,omitempty"` // checkbox
	Start   string       `json:"start,omitempty" yaml:"start,omitempty"`     // date, ISO-8601
}

// Properties maps property names to values.
type Properties map[string]Property

func TitleValue(s string) Property         { return Property{Type: PropertyTitle, Text: s} }
func RichTextValue(s string) Property      { return Property{Type: PropertyRichText, Text: s} }
func SelectValue(s string) Property        { return Property{Type: PropertySelect, Name: s} }
func MultiSelectValue(s []string) Property { return Property{Type: PropertyMultiSelect, Names: s} }
func CheckboxValue(b bool) Property        { return Property{Type: PropertyCheckbox, Checked: b} }
func DateValue(iso string) Property        { return Property{Type: PropertyDate, Start: iso} }

// BlockType is the kind of a content block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockToDo      BlockType = "to_do"
)

// Block is a unit of page content.
type Block struct {
	Type    BlockType `json:"type" yaml:"type"`
	Text    string    `json:"text" yaml:"text"`
	Checked bool      `json:"checked,omitempty" yaml:"checked,omitempty"`
}

// BlocksText renders blocks one per line, to-do items with the same
// "[x] " or "[ ] " prefix as ChecklistText.
func BlocksText(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == BlockToDo {
			lines = append(lines, ChecklistText([]ChecklistItem{{Text: b.Text, Checked: b.Checked}}))
			continue
		}
		lines = append(lines, b.Text)
	}
	return strings.Join(lines, "\n")
}

// Record is a page owned by the destination, referenced by ID.
type Record struct {
	ID         string
	ParentID   string
	Archived   bool
	Properties Properties
}

// TitlePropertyName is the conventional name of the title property.
const TitlePropertyName = "Title"

// Title returns the plain text of the title property.
func (r Record) Title() string {
	if p, ok := r.Properties[TitlePropertyName]; ok {
		return p.Text
	}
	for _, p := range r.Properties {
		if p.Type == PropertyTitle {
			return p.Text
		}
	}
	return ""
}

// Text returns the plain text of a title or rich_text property.
func (r Record) Text(name string) string {
	return r.Properties[name].Text
}

// Labels returns the option names of a multi_select property.
func (r Record) Labels(name string) []string {
	return r.Properties[name].Names
}

// InCollection reports whether the record belongs to the given collection.
func (r Record) InCollection(collectionID string) bool {
	return SameID(r.ParentID, collectionID)
}

// SameID compares two destination ids ignoring dashes and case.
func SameID(a, b string) bool {
	return a != "" && NormalizeID(a) == NormalizeID(b)
}

// NormalizeID strips dashes so hyphenated and compact ids compare equal.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

// SelectOption is a predefined option of a select or multi_select property.
type SelectOption struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// PropertySchema describes one column of a collection.
type PropertySchema struct {
	Type    PropertyType   `json:"type" yaml:"type"`
	Options []SelectOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Schema describes the columns of a collection.
type Schema map[string]PropertySchema

// Collection is a destination database.
type Collection struct {
	ID         string
	Title      string
	Properties map[string]PropertyType
}

// RecordPage is one bounded page of a record listing.
type RecordPage struct {
	Records    []Record
	NextCursor string
	HasMore    bool
}
