package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
)

var (
	syncSources      []string
	syncTitle        string
	syncDatabaseID   string
	syncParentPageID string
	syncDedup        string
	syncDelay        time.Duration
	syncSchema       string
)

// errNoNotes is returned when a sync run produced no notes at all.
var errNoNotes = errors.New("no notes found in the selected sources")

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload notes from the configured sources",
	Long: `Read every configured source and create one page per note in the target
database. When no database id is configured, a database titled --title is
created under the parent page first. Notes whose title already exists in the
database are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applySyncFlags(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		session, err := notesync.Open(ctx, cfg, true, sessionOptions()...)
		if err != nil {
			return err
		}
		if session.Created {
			fmt.Fprintf(out, "%s Created database %q\n", okStyle.Render(markOK), cfg.Sync.Title)
		}

		report, err := session.Sync(ctx, cfg.Sync.Sources, eventPrinter(out))
		printNotices(out, report.Notices)
		if errors.Is(err, context.Canceled) {
			printSyncSummary(out, report.Stats, session.CollectionID)
			return err
		}
		if err != nil {
			return err
		}
		if report.Stats.Total == 0 {
			return errNoNotes
		}
		printSyncSummary(out, report.Stats, session.CollectionID)
		return nil
	},
}

// applySyncFlags overlays the flags the user set onto the loaded config.
func applySyncFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("sources") {
		cfg.Sync.Sources = syncSources
	}
	if flags.Changed("title") {
		cfg.Sync.Title = syncTitle
	}
	if flags.Changed("database-id") {
		cfg.Notion.DatabaseID = syncDatabaseID
	}
	if flags.Changed("parent-page-id") {
		cfg.Notion.ParentPageID = syncParentPageID
	}
	if flags.Changed("dedup") {
		cfg.Sync.Dedup = syncDedup
	}
	if flags.Changed("delay") {
		cfg.Sync.Delay = syncDelay
	}
	if flags.Changed("schema") {
		cfg.Sync.Schema = syncSchema
	}
}

// addSyncFlags registers the flags shared by sync and watch.
func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&syncSources, "sources", nil, "Sources to read (google_keep, apple_notes)")
	cmd.Flags().StringVar(&syncTitle, "title", "", "Title of the database created when none is configured")
	cmd.Flags().StringVar(&syncDatabaseID, "database-id", "", "Target database id")
	cmd.Flags().StringVar(&syncParentPageID, "parent-page-id", "", "Parent page of a created database")
	cmd.Flags().StringVar(&syncDedup, "dedup", "", "Existence check: search, index or none")
	cmd.Flags().DurationVar(&syncDelay, "delay", 0, "Minimum interval between page creations")
	cmd.Flags().StringVar(&syncSchema, "schema", "", "Page layout: auto, simple or blocks")
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}
