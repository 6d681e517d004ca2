package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number of notesync",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notesync version %s\n", notesync.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
