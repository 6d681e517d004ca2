package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync, then sync again whenever the export directories change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applySyncFlags(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		opts := append(sessionOptions(), notesync.WithWatcherErrorHandler(func(err error) {
			slog.Error("watch failed", "error", err)
		}))
		session, err := notesync.Open(ctx, cfg, true, opts...)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, dimStyle.Render("Watching for changes, press Ctrl+C to stop."))
		return session.Watch(ctx, cfg.Sync.Sources, eventPrinter(out), func(report notesync.SyncReport, err error) {
			printNotices(out, report.Notices)
			if err != nil {
				fmt.Fprintf(out, "%s sync failed: %v\n", failStyle.Render(markFail), err)
				return
			}
			printSyncSummary(out, report.Stats, session.CollectionID)
		})
	},
}

func init() {
	addSyncFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
