package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notesync/pkg/core"
)

// storedRecord is the on-disk form of a record.
type storedRecord struct {
	ID         string          `json:"id" yaml:"id"`
	ParentID   string          `json:"parent_id" yaml:"parent_id"`
	Archived   bool            `json:"archived,omitempty" yaml:"archived,omitempty"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" yaml:"updated_at"`
	Properties core.Properties `json:"properties" yaml:"properties"`
	Blocks     []core.Block    `json:"blocks,omitempty" yaml:"-"`
}

func (s storedRecord) record() core.Record {
	return core.Record{
		ID:         s.ID,
		ParentID:   s.ParentID,
		Archived:   s.Archived,
		Properties: s.Properties,
	}
}

// Serializer defines how a record file is read and written.
type Serializer interface {
	// Ext is the file extension, including the dot.
	Ext() string
	Encode(rec storedRecord) ([]byte, error)
	Decode(data []byte) (storedRecord, error)
}

// DefaultSerializers returns the supported record formats by name.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		"json":     JSONSerializer{},
		"markdown": MarkdownSerializer{},
		"md":       MarkdownSerializer{},
	}
}

// --- JSON Serializer ---

// JSONSerializer stores the whole record, blocks included, as JSON.
type JSONSerializer struct{}

func (JSONSerializer) Ext() string { return ".json" }

func (JSONSerializer) Encode(rec storedRecord) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

func (JSONSerializer) Decode(data []byte) (storedRecord, error) {
	var rec storedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return storedRecord{}, fmt.Errorf("invalid json: %w", err)
	}
	return rec, nil
}

// --- Markdown Serializer ---

// MarkdownSerializer stores properties as YAML frontmatter and blocks as the
// Markdown body: one paragraph per block, to-dos as "- [ ]" / "- [x]" items.
type MarkdownSerializer struct{}

func (MarkdownSerializer) Ext() string { return ".md" }

func (MarkdownSerializer) Encode(rec storedRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")

	prevTodo := false
	for i, b := range rec.Blocks {
		isTodo := b.Type == core.BlockToDo
		if i > 0 && !(isTodo && prevTodo) {
			buf.WriteString("\n")
		}
		if isTodo {
			mark := " "
			if b.Checked {
				mark = "x"
			}
			fmt.Fprintf(&buf, "- [%s] %s\n", mark, b.Text)
		} else {
			buf.WriteString(b.Text)
			buf.WriteString("\n")
		}
		prevTodo = isTodo
	}
	return buf.Bytes(), nil
}

func (MarkdownSerializer) Decode(data []byte) (storedRecord, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return storedRecord{}, fmt.Errorf("missing frontmatter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return storedRecord{}, fmt.Errorf("unterminated frontmatter")
		}
		end = len(rest) - len("\n---")
	}
	front, body := rest[:end], ""
	if after := end + len("\n---\n"); after <= len(rest) {
		body = rest[after:]
	}

	var rec storedRecord
	if err := yaml.Unmarshal([]byte(front), &rec); err != nil {
		return storedRecord{}, fmt.Errorf("invalid frontmatter: %w", err)
	}
	rec.Blocks = parseBlocks(body)
	return rec, nil
}

func parseBlocks(body string) []core.Block {
	var blocks []core.Block
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "- [ ] "):
			blocks = append(blocks, core.Block{Type: core.BlockToDo, Text: line[len("- [ ] "):]})
		case strings.HasPrefix(line, "- [x] "):
			blocks = append(blocks, core.Block{Type: core.BlockToDo, Text: line[len("- [x] "):], Checked: true})
		case strings.TrimSpace(line) != "":
			blocks = append(blocks, core.Block{Type: core.BlockParagraph, Text: line})
		}
	}
	return blocks
}
