package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/pkg/reconcile"
)

var (
	backfillSources []string
	backfillDryRun  bool
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Set the created date of uploaded pages from the sources",
	Long: `Re-read the sources and, for every page whose title matches a source note,
set the created-date property to the note's creation time. Pages without a
match and notes without a timestamp are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if cmd.Flags().Changed("sources") {
			cfg.Sync.Sources = backfillSources
		}

		session, err := notesync.Open(ctx, cfg, false, sessionOptions()...)
		if err != nil {
			return err
		}
		res, err := session.Backfill(ctx, cfg.Sync.Sources, reconcile.Options{
			Reporter: reconcilePrinter(out),
			DryRun:   backfillDryRun,
		})
		if err != nil {
			return err
		}
		printReconcileSummary(out, "Backfill complete", res)
		return nil
	},
}

func init() {
	backfillCmd.Flags().StringSliceVar(&backfillSources, "sources", nil, "Sources to read (google_keep, apple_notes)")
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Compute updates without writing them")
	rootCmd.AddCommand(backfillCmd)
}
