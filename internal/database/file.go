package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores each collection as one JSON file under a base directory
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates a file backend rooted at baseDir
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// Path returns the file backing a collection
func (f *FileBackend) Path(c Collection) string {
	return filepath.Join(f.baseDir, c.FileName())
}

func (f *FileBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	if err := ValidateCollectionName(string(c)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return data, nil
}

// Write replaces the collection file atomically: the document is written to a
// temp file in the same directory and renamed over the target.
func (f *FileBackend) Write(ctx context.Context, c Collection, data []byte) error {
	if err := ValidateCollectionName(string(c)); err != nil {
		return err
	}

	if err := os.MkdirAll(f.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.baseDir, "."+c.FileName()+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", c, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", c, err)
	}

	if err := os.Rename(tmpName, f.Path(c)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", c, err)
	}

	return nil
}

func (f *FileBackend) Close() error {
	return nil
}
