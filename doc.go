// Package notesync is the Composition Root for the notesync application.
//
// It connects the core sync logic (normalization, duplicate detection,
// formatting, orchestration and reconciliation) with the source readers and
// destination adapters using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// notesync is a one-way migration tool. Notes are read fresh from Google
// Keep and Apple Notes on every run, normalized into one canonical shape and
// created as pages of a Notion database. Re-running is safe: a note whose
// title already exists in the target collection is skipped.
//
// Features:
//
//   - **Sources**: Google Takeout Keep JSON, the Keep account API (through an
//     injected client), the Apple Notes NoteStore database and markdown
//     folder exports.
//   - **Idempotent Sync**: title search or a pre-built index decides
//     create-vs-skip; a failed check creates anyway.
//   - **Two Schemas**: a simple "Content" property layout and a structured
//     layout with content blocks, detected from the target collection.
//   - **Maintenance Passes**: duplicate cleanup (archive, never delete),
//     created-date backfill and relabeling of existing records.
//   - **Local Destination**: the whole pipeline can target a directory of
//     Markdown files for dry runs.
//
// Usage:
//
//	cfg, err := notesync.LoadConfig("notesync.yaml")
//
//	session, err := notesync.Open(ctx, cfg, true,
//		notesync.WithLogger(logger),
//	)
//
//	report, err := session.Sync(ctx, cfg.Sync.Sources, nil)
package notesync
