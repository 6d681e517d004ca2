package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight writes. The watcher ignores such files.
const TempFilePrefix = "notesync-tmp-"

// filePerm is the mode of record, collection and index files.
const filePerm os.FileMode = 0o644

// writeAtomic replaces path with data through a sibling temp file and a
// rename, creating missing parent directories first. Readers never see a
// partially written record.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", filepath.Base(path), err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(staged)
		}
	}()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(staged, filePerm)
	}
	if werr != nil {
		return fmt.Errorf("stage %s: %w", filepath.Base(path), werr)
	}

	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("commit %s: %w", filepath.Base(path), err)
	}
	return nil
}
