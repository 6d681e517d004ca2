package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/notesync"
)

var (
	cleanupYes    bool
	cleanupDryRun bool
)

var errAborted = errors.New("aborted")

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Archive duplicate pages, keeping the first of each group",
	Long: `Fetch every page of the database, group them by title and content, and
archive all but the first page of every group. Pages are archived, never
deleted, and can be restored from Notion's trash.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		session, err := notesync.Open(ctx, cfg, false, sessionOptions()...)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Fetching all pages...")
		groups, total, err := session.Duplicates(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found %d pages\n", total)
		if len(groups) == 0 {
			fmt.Fprintf(out, "%s No duplicates found\n", okStyle.Render(markOK))
			return nil
		}
		printGroups(out, groups)

		if !cleanupDryRun && !cleanupYes {
			ok, err := confirm(fmt.Sprintf("Archive the duplicates of %d groups?", len(groups)))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}

		res := session.Cleanup(ctx, groups, cleanupDryRun)
		if cleanupDryRun {
			fmt.Fprintf(out, "%s Dry run: %d pages would be archived\n", skipStyle.Render(markSkip), len(res.Planned))
			return nil
		}
		fmt.Fprintf(out, "%s Archived %d pages", okStyle.Render(markOK), res.Archived)
		if res.Failed > 0 {
			fmt.Fprintf(out, ", %s", failStyle.Render(fmt.Sprintf("%d failed", res.Failed)))
		}
		fmt.Fprintln(out)
		if res.Failed > 0 {
			return errors.Join(res.Errors...)
		}
		return nil
	},
}

// confirm asks a yes/no question. Without a terminal there is nobody to
// answer, so it fails and points at --yes.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("confirmation required: stdin is not a terminal (use --yes)")
	}
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Archive").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "Archive without asking")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Only list what would be archived")
	rootCmd.AddCommand(cleanupCmd)
}
