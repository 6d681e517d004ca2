package notesync_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/pkg/config"
)

// Example_local demonstrates a sync from an Apple Notes export into a local
// directory destination, run twice.
func Example_local() {
	tmpDir, err := os.MkdirTemp("", "notesync-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	export := filepath.Join(tmpDir, "export")
	if err := os.MkdirAll(filepath.Join(export, "Groceries"), 0o755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(export, "Groceries", "Groceries.md"), []byte("milk\neggs"), 0o644); err != nil {
		log.Fatal(err)
	}

	cfg := notesync.DefaultConfig()
	cfg.Sync.Sources = []string{config.SourceAppleNotes}
	cfg.Sync.Delay = 0
	cfg.AppleNotes.ExportDir = export

	ctx := context.Background()
	for range 2 {
		session, err := notesync.Open(ctx, cfg, true, notesync.WithLocal(filepath.Join(tmpDir, "archive")))
		if err != nil {
			log.Fatal(err)
		}
		report, err := session.Sync(ctx, cfg.Sync.Sources, nil)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("synced=%d skipped=%d\n", report.Stats.Synced, report.Stats.Skipped)
	}
	// Output:
	// synced=1 skipped=0
	// synced=0 skipped=1
}
