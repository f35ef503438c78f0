package internal

import (
	"path/filepath"
)

// ResolveDataDir resolves the absolute path of the session data directory.
// Symlinks are resolved so the same case directory always produces the
// same log file suffix.
func ResolveDataDir(dir string) (string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	return absPath, nil
}
