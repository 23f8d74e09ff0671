package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// FileKV implements the KV interface with one file per key in a directory
type FileKV struct {
	basePath string
}

// NewFileKV creates a new FileKV instance
func NewFileKV(basePath string) (*FileKV, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &FileKV{
		basePath: basePath,
	}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.basePath, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

// Get reads the file stored for key
func (f *FileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Set replaces the file stored for key. The value is written to a temporary
// file first so a crash never leaves a half-written record behind.
func (f *FileKV) Set(key string, value []byte) error {
	path := f.path(key)
	tmp, err := os.CreateTemp(f.basePath, ".documind-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}
