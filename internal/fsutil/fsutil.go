// Package fsutil holds small filesystem helpers; the history store uses
// MakeDir to create its database directory.
package fsutil

import (
	"fmt"
	"os"
)

// MakeDir creates a directory and any missing parents.
func MakeDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// MoveFile renames src to dst, wrapping the error with both paths.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}
