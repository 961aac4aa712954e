// Package storage manages the on-disk directory of generated image files.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrFileMissing is returned when a file named by a record no longer exists
// on disk, e.g. after external deletion.
var ErrFileMissing = errors.New("file missing on server")

// FileStore writes generated images into the uploads directory. Every file
// gets a fresh uuid name, so concurrent writes never collide.
type FileStore struct {
	uploadDir string
}

// NewFileStore creates the uploads directory if needed.
func NewFileStore(uploadDir string) (*FileStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FileStore{uploadDir: uploadDir}, nil
}

// SaveImage writes image bytes to a new uniquely-named PNG file and
// returns the file name.
func (s *FileStore) SaveImage(data []byte) (string, error) {
	name := uuid.New().String() + ".png"
	path := filepath.Join(s.uploadDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}
	return name, nil
}

// Open opens a stored file by name. A file that has disappeared from disk
// returns ErrFileMissing so callers can report it distinctly.
func (s *FileStore) Open(name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.uploadDir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileMissing
		}
		return nil, fmt.Errorf("opening image file: %w", err)
	}
	return f, nil
}

// Path returns the absolute on-disk path for a stored file name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.uploadDir, filepath.Base(name))
}

// Dir returns the uploads directory.
func (s *FileStore) Dir() string {
	return s.uploadDir
}
