package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aretw0/notesync"
	"github.com/aretw0/notesync/pkg/config"
	"github.com/aretw0/notesync/pkg/core"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

var (
	verbose     bool
	configPath  string
	logFile     string
	localDir    string
	localFormat string

	cfg     config.Config
	logSink io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Migrate Google Keep and Apple Notes into a Notion database",
	Long: `notesync reads notes from Google Keep (Takeout export or account) and
Apple Notes (NoteStore database or markdown export) and creates one Notion
page per note. Re-running is safe: notes already present are skipped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "" {
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
		}
		setupLogger(cmd.ErrOrStderr())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logSink != nil {
			_ = logSink.Close()
			logSink = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, core.ErrConfiguration) {
			fatal("Configuration error", err)
		}
		fatal("Error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (json, yaml, toml or .env); searched upwards when empty")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to a rotating file")
	rootCmd.PersistentFlags().StringVar(&localDir, "local", "", "Write to a local directory instead of Notion")
	rootCmd.PersistentFlags().StringVar(&localFormat, "local-format", "markdown", "Record file format for --local (markdown or json)")
}

// loadConfig reads --config, or the nearest notesync config file upwards of
// the working directory, and overlays the environment.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			if found, err := notesync.FindConfig(wd); err == nil {
				path = found
			}
		}
	}
	return notesync.LoadConfig(path)
}

func setupLogger(stderr io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = stderr
	file := logFile
	if file == "" {
		file = cfg.Log.File
	}
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
		logSink = rotator
		out = io.MultiWriter(stderr, rotator)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	logger := slog.New(slog.NewTextHandler(out, opts))
	slog.SetDefault(logger)
}

// sessionOptions returns the options every command opens a session with.
func sessionOptions() []notesync.Option {
	opts := []notesync.Option{notesync.WithLogger(slog.Default())}
	if localDir != "" {
		opts = append(opts, notesync.WithLocal(localDir), notesync.WithLocalFormat(localFormat))
	}
	return opts
}
