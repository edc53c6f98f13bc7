// Package writeback persists regenerated dataset files: atomic replacement on
// a billy filesystem, schema line maintenance and TOML syntax validation.
package writeback

import (
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

// AtomicWrite replaces name with content. The content is written to a temp
// file in the same directory first, then renamed over the target.
func AtomicWrite(fs billy.Filesystem, name string, content []byte) error {
	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := fs.TempFile(dir, ".sona-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if ch, ok := fs.(billy.Change); ok {
		mode := os.FileMode(0o644)
		if info, err := fs.Stat(name); err == nil {
			mode = info.Mode()
		}
		_ = ch.Chmod(tmpName, mode) // best-effort permission sync
	}

	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
