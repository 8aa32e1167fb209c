// Package maintenance provides housekeeping: timestamped backups of the
// operator's config and secret database, with retention pruning.
package maintenance

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const timestampFormat = "20060102-150405"

// BackupFile copies src into backupDir as <name>-<timestamp>, then prunes
// older backups of the same file beyond keep. Returns the backup path.
func BackupFile(src, backupDir string, keep int) (string, error) {
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	name := filepath.Base(src)
	dst := filepath.Join(backupDir, name+"-"+time.Now().Format(timestampFormat))

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup: %w", err)
	}

	if keep > 0 {
		if err := pruneBackups(backupDir, name, keep); err != nil {
			return dst, fmt.Errorf("backup written but pruning failed: %w", err)
		}
	}

	return dst, nil
}

// BackupAll backs up each source file that exists, skipping the ones
// that do not. Returns the backup paths written.
func BackupAll(sources []string, backupDir string, keep int) ([]string, error) {
	var written []string
	for _, src := range sources {
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		dst, err := BackupFile(src, backupDir, keep)
		if err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	return written, nil
}

// ListBackups returns backup paths for a file, newest first.
func ListBackups(backupDir, name string) ([]string, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), name+"-") {
			backups = append(backups, filepath.Join(backupDir, entry.Name()))
		}
	}

	// Timestamp suffixes sort lexically; reverse for newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// pruneBackups removes backups of name beyond the keep newest.
func pruneBackups(backupDir, name string, keep int) error {
	backups, err := ListBackups(backupDir, name)
	if err != nil {
		return err
	}
	for _, old := range backups[min(keep, len(backups)):] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
