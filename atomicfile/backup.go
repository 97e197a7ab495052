package atomicfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

// BackupPath returns the path of backup slot n (1 is the most recent).
func BackupPath(path string, n int) string {
	return path + ".bak" + strconv.Itoa(n)
}

// RotateBackups shifts the backup chain of path by one slot and copies the current
// primary into slot 1. Slot n is discarded. If path does not exist, nothing happens.
func RotateBackups(path string, n int) error {
	if n <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("atomicfile: failed to stat %s: %w", path, err)
	}

	if err := os.Remove(BackupPath(path, n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("atomicfile: failed to drop oldest backup: %w", err)
	}

	for i := n - 1; i >= 1; i-- {
		err := os.Rename(BackupPath(path, i), BackupPath(path, i+1))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("atomicfile: failed to shift backup %d: %w", i, err)
		}
	}

	if err := copyFile(path, BackupPath(path, 1), info.Mode().Perm()); err != nil {
		return fmt.Errorf("atomicfile: failed to back up %s: %w", path, err)
	}
	return nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}
