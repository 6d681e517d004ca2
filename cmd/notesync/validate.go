package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/pkg/format"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the connection to the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := cfg.ValidateSources(cfg.Sync.Sources); err != nil {
			return err
		}
		for _, src := range cfg.Sync.Sources {
			if cfg.Configured(src) {
				fmt.Fprintf(out, "%s Source %s configured\n", okStyle.Render(markOK), src)
			} else {
				fmt.Fprintf(out, "%s Source %s not configured\n", skipStyle.Render(markSkip), src)
			}
		}

		session, err := notesync.Open(ctx, cfg, false, sessionOptions()...)
		if err != nil {
			return err
		}
		col, err := session.Collection(ctx)
		if err != nil {
			fmt.Fprintln(out, "Common issues:")
			fmt.Fprintln(out, "  1. Integration not connected to the database")
			fmt.Fprintln(out, "  2. Token is invalid or expired")
			fmt.Fprintln(out, "  3. Database id is incorrect")
			return fmt.Errorf("database not accessible: %w", err)
		}

		fmt.Fprintf(out, "%s Database %q is accessible\n", okStyle.Render(markOK), col.Title)
		fmt.Fprintln(out, headerStyle.Render("Properties:"))
		names := make([]string, 0, len(col.Properties))
		for name := range col.Properties {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(out, "   - %s (%s)\n", name, col.Properties[name])
		}
		fmt.Fprintf(out, "Detected layout: %s\n", format.DetectSchema(col))
		fmt.Fprintf(out, "%s All validations passed\n", okStyle.Render(markOK))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
