// Package sink writes generated output to disk atomically.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile atomically writes content to path: the parent directory is
// created if missing, content is written to a temp file alongside the
// target, and the temp file is renamed into place. A reader of path never
// observes a partially written file.
func WriteFile(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".sink-*")
	if err != nil {
		return fmt.Errorf("sink: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sink: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("sink: closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("sink: renaming into %s: %w", path, err)
	}
	return nil
}
