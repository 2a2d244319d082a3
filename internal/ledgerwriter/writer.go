package ledgerwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fjacquet/ledger-audit/internal/logging"
)

// IOFailure marks a failed backup or write. It is fatal for the affected
// file; the destination is guaranteed untouched when it is returned.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error {
	return e.Err
}

// WriteAtomically writes data to path via a temporary file in the same
// directory followed by an atomic rename. On any failure the destination
// file is left untouched.
func WriteAtomically(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".ledger-audit-*")
	if err != nil {
		return &IOFailure{Op: "create temp file in", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return &IOFailure{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return &IOFailure{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &IOFailure{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return &IOFailure{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &IOFailure{Op: "rename over", Path: path, Err: err}
	}
	return nil
}

// BackupAndWrite creates a timestamped backup copy of path before replacing
// its contents atomically. Backup failure aborts the write: fail closed,
// the original is never touched without a backup on disk. A missing
// destination needs no backup. backupDir defaults to a "backups" sibling
// directory next to the file.
func BackupAndWrite(path string, data []byte, backupDir string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}

	if _, err := os.Stat(path); err == nil {
		backupPath, err := backupCopy(path, backupDir)
		if err != nil {
			return err
		}
		logger.WithFields(
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: "backup", Value: backupPath},
		).Debug("Created backup before rewrite")
	} else if !os.IsNotExist(err) {
		return &IOFailure{Op: "stat", Path: path, Err: err}
	}

	return WriteAtomically(path, data)
}

// backupCopy copies path into the backup directory with a timestamped name
// and returns the backup path.
func backupCopy(path, backupDir string) (string, error) {
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(path), "backups")
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", &IOFailure{Op: "create backup directory", Path: backupDir, Err: err}
	}

	stamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))

	src, err := os.Open(path)
	if err != nil {
		return "", &IOFailure{Op: "open for backup", Path: path, Err: err}
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", &IOFailure{Op: "create backup", Path: backupPath, Err: err}
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(backupPath)
		return "", &IOFailure{Op: "copy backup", Path: backupPath, Err: err}
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(backupPath)
		return "", &IOFailure{Op: "close backup", Path: backupPath, Err: err}
	}
	return backupPath, nil
}
