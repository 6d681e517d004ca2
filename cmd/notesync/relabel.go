package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/pkg/reconcile"
)

var (
	relabelFrom   string
	relabelTo     string
	relabelDryRun bool
)

// relabelCmd represents the relabel command
var relabelCmd = &cobra.Command{
	Use:   "relabel",
	Short: "Replace a label on every page that carries it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		session, err := notesync.Open(ctx, cfg, false, sessionOptions()...)
		if err != nil {
			return err
		}
		res, err := session.Relabel(ctx, relabelFrom, relabelTo, reconcile.Options{
			Reporter: reconcilePrinter(out),
			DryRun:   relabelDryRun,
		})
		if err != nil {
			return err
		}
		printReconcileSummary(out, "Relabel complete", res)
		return nil
	},
}

func init() {
	relabelCmd.Flags().StringVar(&relabelFrom, "from", "Apple Notes", "Label to replace")
	relabelCmd.Flags().StringVar(&relabelTo, "to", "source", "Replacement label")
	relabelCmd.Flags().BoolVar(&relabelDryRun, "dry-run", false, "Compute updates without writing them")
	rootCmd.AddCommand(relabelCmd)
}
