// Package fsutil reads and saves markdown documents. Saves are atomic, refuse
// to clobber files changed since they were read, and can keep a sidecar backup
// of the original content.
package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// BackupSuffix is appended to a file's path to name its backup.
const BackupSuffix = ".gomdedit.bak"

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed on disk since it was read.
	ErrModified = errors.New("file modified since it was read")
)

// FileInfo captures the state of a file when it was read or last saved.
type FileInfo struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time
	Size    int64
	Hash    [32]byte
}

// ReadFile reads a file and returns its content along with metadata for a
// later Save.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	return content, &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// SaveOptions controls Save.
type SaveOptions struct {
	// Info is the state returned by ReadFile or a previous Save. When set,
	// Save fails with ErrModified if the file changed in between.
	Info *FileInfo

	// Backup keeps the file's current content at path+BackupSuffix. An
	// existing backup is never overwritten.
	Backup bool
}

// Save writes content to path atomically and returns the new file state. It
// returns the previous state unchanged when the content is identical.
func Save(ctx context.Context, path string, content []byte, opts SaveOptions) (*FileInfo, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("save: %w", err)
	}

	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("read existing: %w", err)
	}

	if opts.Info != nil {
		if !exists || sha256.Sum256(existing) != opts.Info.Hash {
			return nil, false, fmt.Errorf("%w: %s", ErrModified, path)
		}
	}
	if exists && bytes.Equal(existing, content) {
		return opts.Info, false, nil
	}

	mode := DefaultFileMode
	if opts.Info != nil && opts.Info.Mode != 0 {
		mode = opts.Info.Mode.Perm()
	}

	if opts.Backup && exists {
		if err := createBackup(path, existing, mode); err != nil {
			return nil, false, err
		}
	}

	if err := writeAtomic(path, content, mode); err != nil {
		return nil, false, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, true, fmt.Errorf("stat %s: %w", path, err)
	}
	return &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, true, nil
}

func createBackup(path string, content []byte, mode os.FileMode) error {
	backup := path + BackupSuffix
	if _, err := os.Stat(backup); err == nil {
		return nil
	}
	if err := writeAtomic(backup, content, mode); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path. On error the original file is untouched.
func writeAtomic(path string, content []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
