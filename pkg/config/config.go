// Package config loads notesync settings from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aretw0/notesync/pkg/core"
)

// Source selectors accepted by --sources.
const (
	SourceGoogleKeep = "google_keep"
	SourceAppleNotes = "apple_notes"
)

// AllSources lists every selector in processing order.
var AllSources = []string{SourceGoogleKeep, SourceAppleNotes}

// EnvPrefix prefixes every environment override (NOTESYNC_NOTION_API_TOKEN, ...).
const EnvPrefix = "NOTESYNC"

// Config is the complete configuration, built once at startup and passed to
// every component that needs it.
type Config struct {
	Notion     NotionConfig     `mapstructure:"notion" json:"notion" yaml:"notion" toml:"notion"`
	GoogleKeep GoogleKeepConfig `mapstructure:"google_keep" json:"google_keep" yaml:"google_keep" toml:"google_keep"`
	AppleNotes AppleNotesConfig `mapstructure:"apple_notes" json:"apple_notes" yaml:"apple_notes" toml:"apple_notes"`
	Sync       SyncConfig       `mapstructure:"sync" json:"sync" yaml:"sync" toml:"sync"`
	Log        LogConfig        `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
}

// NotionConfig holds destination credentials and target ids.
type NotionConfig struct {
	APIToken     string        `mapstructure:"api_token" json:"api_token" yaml:"api_token" toml:"api_token"`
	DatabaseID   string        `mapstructure:"database_id" json:"database_id" yaml:"database_id" toml:"database_id"`
	ParentPageID string        `mapstructure:"parent_page_id" json:"parent_page_id" yaml:"parent_page_id" toml:"parent_page_id"`
	BaseURL      string        `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	MaxRetries   int           `mapstructure:"max_retries" json:"max_retries,omitempty" yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
}

// GoogleKeepConfig configures the Keep sources.
type GoogleKeepConfig struct {
	TakeoutDir string `mapstructure:"takeout_dir" json:"takeout_dir" yaml:"takeout_dir" toml:"takeout_dir"`
	Username   string `mapstructure:"username" json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password   string `mapstructure:"password" json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
}

// AppleNotesConfig configures the Apple Notes sources.
type AppleNotesConfig struct {
	DatabasePath string `mapstructure:"database_path" json:"database_path" yaml:"database_path" toml:"database_path"`
	ExportDir    string `mapstructure:"export_dir" json:"export_dir" yaml:"export_dir" toml:"export_dir"`
	SourceTag    string `mapstructure:"source_tag" json:"source_tag,omitempty" yaml:"source_tag,omitempty" toml:"source_tag,omitempty"`
}

// SyncConfig tunes the sync run.
type SyncConfig struct {
	Title   string        `mapstructure:"title" json:"title" yaml:"title" toml:"title"`
	Sources []string      `mapstructure:"sources" json:"sources" yaml:"sources" toml:"sources"`
	Delay   time.Duration `mapstructure:"delay" json:"delay" yaml:"delay" toml:"delay"`
	Dedup   string        `mapstructure:"dedup" json:"dedup" yaml:"dedup" toml:"dedup"`
	Schema  string        `mapstructure:"schema" json:"schema" yaml:"schema" toml:"schema"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File string `mapstructure:"file" json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
}

// Defaults returns the configuration used when nothing overrides a key.
func Defaults() Config {
	return Config{
		Notion: NotionConfig{
			Timeout: 20 * time.Second,
		},
		AppleNotes: AppleNotesConfig{
			SourceTag: "Apple Notes",
		},
		Sync: SyncConfig{
			Title:   "Notes Archive",
			Sources: slices.Clone(AllSources),
			Delay:   300 * time.Millisecond,
			Dedup:   "search",
			Schema:  "auto",
		},
	}
}

// legacyEnv maps the environment variables of earlier releases to keys.
var legacyEnv = map[string]string{
	"notion.api_token":      "NOTION_API_TOKEN",
	"notion.database_id":    "NOTION_DATABASE_ID",
	"notion.parent_page_id": "NOTION_PARENT_PAGE_ID",
}

// Load reads path (json, yaml, toml or env, by extension) and overlays the
// environment. An empty path reads the environment and defaults only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+envName(key), env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return Config{}, &core.ConfigurationError{Field: "config", Reason: "file not found: " + path}
			}
			return Config{}, &core.ConfigurationError{Field: "config", Reason: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &core.ConfigurationError{Field: "config", Reason: err.Error()}
	}
	cfg.Sync.Sources = splitSources(cfg.Sync.Sources)
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("notion.api_token", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("notion.parent_page_id", "")
	v.SetDefault("notion.base_url", "")
	v.SetDefault("notion.timeout", d.Notion.Timeout)
	v.SetDefault("notion.max_retries", 0)
	v.SetDefault("google_keep.takeout_dir", "")
	v.SetDefault("google_keep.username", "")
	v.SetDefault("google_keep.password", "")
	v.SetDefault("apple_notes.database_path", "")
	v.SetDefault("apple_notes.export_dir", "")
	v.SetDefault("apple_notes.source_tag", d.AppleNotes.SourceTag)
	v.SetDefault("sync.title", d.Sync.Title)
	v.SetDefault("sync.sources", d.Sync.Sources)
	v.SetDefault("sync.delay", d.Sync.Delay)
	v.SetDefault("sync.dedup", d.Sync.Dedup)
	v.SetDefault("sync.schema", d.Sync.Schema)
	v.SetDefault("log.file", "")
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitSources accepts both list values and a single comma-separated string,
// as environment variables deliver.
func splitSources(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			if !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}
