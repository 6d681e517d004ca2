package config

import (
	"fmt"
	"slices"

	"github.com/aretw0/notesync/pkg/core"
)

// ValidateDestination checks what every Notion-backed command needs: a token
// and either a database id or a parent page to create one under.
func (c Config) ValidateDestination() error {
	if c.Notion.APIToken == "" {
		return &core.ConfigurationError{Field: "notion.api_token", Reason: "required"}
	}
	if c.Notion.DatabaseID == "" && c.Notion.ParentPageID == "" {
		return &core.ConfigurationError{Field: "notion.database_id", Reason: "set a database id or a parent_page_id"}
	}
	return nil
}

// RequireDatabase checks that an existing collection is targeted.
func (c Config) RequireDatabase() error {
	if c.Notion.APIToken == "" {
		return &core.ConfigurationError{Field: "notion.api_token", Reason: "required"}
	}
	if c.Notion.DatabaseID == "" {
		return &core.ConfigurationError{Field: "notion.database_id", Reason: "required"}
	}
	return nil
}

// ValidateSources checks the selectors and the sync tunables. Missing
// per-source settings are not errors: that source is skipped at run time.
func (c Config) ValidateSources(selected []string) error {
	if len(selected) == 0 {
		return &core.ConfigurationError{Field: "sync.sources", Reason: "no source selected"}
	}
	for _, s := range selected {
		if !slices.Contains(AllSources, s) {
			return &core.ConfigurationError{Field: "sync.sources", Reason: fmt.Sprintf("unknown source %q", s)}
		}
	}
	if c.Sync.Delay < 0 {
		return &core.ConfigurationError{Field: "sync.delay", Reason: "must not be negative"}
	}
	switch c.Sync.Dedup {
	case "", "search", "index", "none":
	default:
		return &core.ConfigurationError{Field: "sync.dedup", Reason: fmt.Sprintf("unknown mode %q (want search, index or none)", c.Sync.Dedup)}
	}
	return nil
}

// Configured reports whether a source selector has enough settings to run.
func (c Config) Configured(source string) bool {
	switch source {
	case SourceGoogleKeep:
		return c.GoogleKeep.TakeoutDir != "" || (c.GoogleKeep.Username != "" && c.GoogleKeep.Password != "")
	case SourceAppleNotes:
		return c.AppleNotes.DatabasePath != "" || c.AppleNotes.ExportDir != ""
	default:
		return false
	}
}
