package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Example returns a starting configuration for `config init`.
func Example() Config {
	cfg := Defaults()
	cfg.Notion.APIToken = "secret_xxx"
	cfg.Notion.ParentPageID = "your-parent-page-id"
	cfg.GoogleKeep.TakeoutDir = "Takeout/Keep"
	cfg.AppleNotes.DatabasePath = "~/Library/Group Containers/group.com.apple.notes/NoteStore.sqlite"
	return cfg
}

// Encode renders cfg in the format implied by the file extension.
func Encode(cfg Config, path string) ([]byte, error) {
	doc := layout(cfg)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
}

// WriteFile writes cfg to path, refusing to overwrite unless force is set.
func WriteFile(cfg Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := Encode(cfg, path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// fileLayout mirrors Config with durations rendered as strings ("300ms"),
// which viper decodes back from every format.
type fileLayout struct {
	Notion     fileNotion       `json:"notion" yaml:"notion" toml:"notion"`
	GoogleKeep GoogleKeepConfig `json:"google_keep" yaml:"google_keep" toml:"google_keep"`
	AppleNotes AppleNotesConfig `json:"apple_notes" yaml:"apple_notes" toml:"apple_notes"`
	Sync       fileSync         `json:"sync" yaml:"sync" toml:"sync"`
	Log        LogConfig        `json:"log" yaml:"log" toml:"log"`
}

type fileNotion struct {
	APIToken     string `json:"api_token" yaml:"api_token" toml:"api_token"`
	DatabaseID   string `json:"database_id" yaml:"database_id" toml:"database_id"`
	ParentPageID string `json:"parent_page_id" yaml:"parent_page_id" toml:"parent_page_id"`
	Timeout      string `json:"timeout" yaml:"timeout" toml:"timeout"`
	MaxRetries   int    `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
}

type fileSync struct {
	Title   string   `json:"title" yaml:"title" toml:"title"`
	Sources []string `json:"sources" yaml:"sources" toml:"sources"`
	Delay   string   `json:"delay" yaml:"delay" toml:"delay"`
	Dedup   string   `json:"dedup" yaml:"dedup" toml:"dedup"`
	Schema  string   `json:"schema" yaml:"schema" toml:"schema"`
}

func layout(cfg Config) fileLayout {
	return fileLayout{
		Notion: fileNotion{
			APIToken:     cfg.Notion.APIToken,
			DatabaseID:   cfg.Notion.DatabaseID,
			ParentPageID: cfg.Notion.ParentPageID,
			Timeout:      cfg.Notion.Timeout.String(),
			MaxRetries:   cfg.Notion.MaxRetries,
		},
		GoogleKeep: cfg.GoogleKeep,
		AppleNotes: cfg.AppleNotes,
		Sync: fileSync{
			Title:   cfg.Sync.Title,
			Sources: cfg.Sync.Sources,
			Delay:   cfg.Sync.Delay.String(),
			Dedup:   cfg.Sync.Dedup,
			Schema:  cfg.Sync.Schema,
		},
		Log: cfg.Log,
	}
}
