package notion

import (
	"strings"

	"github.com/aretw0/notesync/pkg/core"
)

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Type      string       `json:"type,omitempty"`
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type selectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type dateValue struct {
	Start string `json:"start"`
}

// propertyValue decodes any supported property of a page response.
type propertyValue struct {
	Type        string         `json:"type"`
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Select      *selectOption  `json:"select"`
	MultiSelect []selectOption `json:"multi_select"`
	Checkbox    bool           `json:"checkbox"`
	Date        *dateValue     `json:"date"`
}

type parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

type page struct {
	Object     string                   `json:"object"`
	ID         string                   `json:"id"`
	Archived   bool                     `json:"archived"`
	InTrash    bool                     `json:"in_trash"`
	Parent     parent                   `json:"parent"`
	Properties map[string]propertyValue `json:"properties"`
}

type listResponse struct {
	Results    []page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

type blockBody struct {
	RichText []richText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// block decodes the block kinds this tool writes. Other kinds carry no body.
type block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *blockBody `json:"paragraph"`
	ToDo      *blockBody `json:"to_do"`
}

type blockList struct {
	Results    []block `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

type database struct {
	ID         string     `json:"id"`
	Title      []richText `json:"title"`
	Properties map[string]struct {
		Type string `json:"type"`
	} `json:"properties"`
}

type created struct {
	ID string `json:"id"`
}

func text(s string) []richText {
	if s == "" {
		return []richText{}
	}
	return []richText{{Type: "text", Text: &textContent{Content: s}}}
}

func plain(segments []richText) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.PlainText != "":
			b.WriteString(seg.PlainText)
		case seg.Text != nil:
			b.WriteString(seg.Text.Content)
		}
	}
	return b.String()
}

// encodeProperties renders property values in the request shape, one key
// per property type.
func encodeProperties(props core.Properties) map[string]any {
	out := make(map[string]any, len(props))
	for name, p := range props {
		switch p.Type {
		case core.PropertyTitle:
			out[name] = map[string]any{"title": text(p.Text)}
		case core.PropertyRichText:
			out[name] = map[string]any{"rich_text": text(p.Text)}
		case core.PropertySelect:
			if p.Name == "" {
				out[name] = map[string]any{"select": nil}
				continue
			}
			out[name] = map[string]any{"select": selectOption{Name: p.Name}}
		case core.PropertyMultiSelect:
			opts := make([]selectOption, 0, len(p.Names))
			for _, n := range p.Names {
				opts = append(opts, selectOption{Name: n})
			}
			out[name] = map[string]any{"multi_select": opts}
		case core.PropertyCheckbox:
			out[name] = map[string]any{"checkbox": p.Checked}
		case core.PropertyDate:
			out[name] = map[string]any{"date": dateValue{Start: p.Start}}
		}
	}
	return out
}

func decodeProperties(in map[string]propertyValue) core.Properties {
	out := make(core.Properties, len(in))
	for name, v := range in {
		switch core.PropertyType(v.Type) {
		case core.PropertyTitle:
			out[name] = core.TitleValue(plain(v.Title))
		case core.PropertyRichText:
			out[name] = core.RichTextValue(plain(v.RichText))
		case core.PropertySelect:
			sel := ""
			if v.Select != nil {
				sel = v.Select.Name
			}
			out[name] = core.SelectValue(sel)
		case core.PropertyMultiSelect:
			names := make([]string, 0, len(v.MultiSelect))
			for _, o := range v.MultiSelect {
				names = append(names, o.Name)
			}
			out[name] = core.MultiSelectValue(names)
		case core.PropertyCheckbox:
			out[name] = core.CheckboxValue(v.Checkbox)
		case core.PropertyDate:
			start := ""
			if v.Date != nil {
				start = v.Date.Start
			}
			out[name] = core.DateValue(start)
		}
	}
	return out
}

func decodeRecord(p page) core.Record {
	return core.Record{
		ID:         p.ID,
		ParentID:   p.Parent.DatabaseID,
		Archived:   p.Archived || p.InTrash,
		Properties: decodeProperties(p.Properties),
	}
}

func encodeBlocks(blocks []core.Block) []map[string]any {
	out := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		body := map[string]any{"rich_text": text(b.Text)}
		if b.Type == core.BlockToDo {
			body["checked"] = b.Checked
		}
		out = append(out, map[string]any{
			"object":       "block",
			"type":         string(b.Type),
			string(b.Type): body,
		})
	}
	return out
}

func decodeBlock(b block) (core.Block, bool) {
	switch {
	case b.Type == string(core.BlockParagraph) && b.Paragraph != nil:
		return core.Block{Type: core.BlockParagraph, Text: plain(b.Paragraph.RichText)}, true
	case b.Type == string(core.BlockToDo) && b.ToDo != nil:
		return core.Block{Type: core.BlockToDo, Text: plain(b.ToDo.RichText), Checked: b.ToDo.Checked}, true
	default:
		return core.Block{}, false
	}
}

func encodeSchema(schema core.Schema) map[string]any {
	out := make(map[string]any, len(schema))
	for name, col := range schema {
		var def map[string]any
		switch col.Type {
		case core.PropertySelect, core.PropertyMultiSelect:
			opts := make([]selectOption, 0, len(col.Options))
			for _, o := range col.Options {
				opts = append(opts, selectOption{Name: o.Name, Color: o.Color})
			}
			def = map[string]any{"options": opts}
		default:
			def = map[string]any{}
		}
		out[name] = map[string]any{string(col.Type): def}
	}
	return out
}
