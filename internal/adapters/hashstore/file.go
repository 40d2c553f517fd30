package hashstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFilename is the hidden list kept inside the target directory.
const DefaultFilename = ".image_hashes.txt"

// FileStore implements ports.HashStore on an append-only text file,
// one hash per line.
type FileStore struct {
	path   string
	hashes map[string]struct{}
}

// NewFileStore creates a FileStore backed by filename inside dir.
func NewFileStore(dir, filename string) *FileStore {
	if filename == "" {
		filename = DefaultFilename
	}
	return &FileStore{
		path:   filepath.Join(dir, filename),
		hashes: make(map[string]struct{}),
	}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the backing file into memory.
func (s *FileStore) Load(ctx context.Context) (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open hash file %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.hashes[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return len(s.hashes), fmt.Errorf("failed to read hash file %s: %w", s.path, err)
	}
	return len(s.hashes), nil
}

// Contains reports whether hash has been seen.
func (s *FileStore) Contains(hash string) bool {
	_, ok := s.hashes[hash]
	return ok
}

// Record appends hash to the backing file.
func (s *FileStore) Record(ctx context.Context, hash string) error {
	s.hashes[hash] = struct{}{}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open hash file %s: %w", s.path, err)
	}
	if _, err := f.WriteString(hash + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append hash: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close hash file: %w", err)
	}
	return nil
}

// Len returns the number of known hashes.
func (s *FileStore) Len() int {
	return len(s.hashes)
}
