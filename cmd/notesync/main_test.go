package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notesync/pkg/core"
)

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeExport(t *testing.T, notes ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range notes {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, name+".md"), []byte("body of "+name), 0o644))
	}
	return dir
}

func writeConfig(t *testing.T, exportDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notesync.yaml")
	content := "sync:\n  sources: [apple_notes]\n  delay: 0s\napple_notes:\n  export_dir: " + exportDir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "notesync version")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notesync.json")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"notion"`)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err, "refuses to overwrite")

	_, err = run(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestSync_Local(t *testing.T) {
	cfgPath := writeConfig(t, writeExport(t, "Alpha", "Beta"))
	local := t.TempDir()

	out, err := run(t, "sync", "--config", cfgPath, "--local", local)
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "Synced:  2")
	assert.Contains(t, out, local)

	out, err = run(t, "sync", "--config", cfgPath, "--local", local)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, "Skipped: 2")

	out, err = run(t, "cleanup", "--config", cfgPath, "--local", local, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "No duplicates found")

	out, err = run(t, "validate", "--config", cfgPath, "--local", local)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed")
	assert.Contains(t, out, "Detected layout: blocks")

	out, err = run(t, "relabel", "--config", cfgPath, "--local", local, "--to", "imported")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated: 2")
}

func TestSync_NoNotes(t *testing.T) {
	cfgPath := writeConfig(t, writeExport(t))

	_, err := run(t, "sync", "--config", cfgPath, "--local", t.TempDir())
	assert.ErrorIs(t, err, errNoNotes)
}

func TestSync_ConfigurationError(t *testing.T) {
	cfgPath := writeConfig(t, writeExport(t, "Alpha"))
	t.Setenv("NOTION_API_TOKEN", "")
	t.Setenv("NOTESYNC_NOTION_API_TOKEN", "")

	_, err := run(t, "sync", "--config", cfgPath)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = run(t, "sync", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestCleanup_NeedsConfirmation(t *testing.T) {
	cfgPath := writeConfig(t, writeExport(t, "Alpha"))
	local := t.TempDir()
	_, err := run(t, "sync", "--config", cfgPath, "--local", local)
	require.NoError(t, err)

	// Duplicate every page by syncing without an existence check.
	_, err = run(t, "sync", "--config", cfgPath, "--local", local, "--dedup", "none")
	require.NoError(t, err)

	out, err := run(t, "cleanup", "--config", cfgPath, "--local", local, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "1 pages would be archived")

	out, err = run(t, "cleanup", "--config", cfgPath, "--local", local, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived 1 pages")
}
