package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notesync/pkg/config"
)

var configForce bool

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:         "init [path]",
	Short:       "Write an example configuration (json, yaml or toml, by extension)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "notesync.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteFile(config.Example(), path, configForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", okStyle.Render(markOK), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
