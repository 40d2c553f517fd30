package localstorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"imagefetcher/internal/core/domain"
)

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct {
	BaseDir string

	logger    zerolog.Logger
	freeSpace func(path string) (uint64, error)
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(baseDir string, logger zerolog.Logger) *LocalStorage {
	return &LocalStorage{
		BaseDir:   baseDir,
		logger:    logger.With().Str("component", "localstorage").Logger(),
		freeSpace: diskFree,
	}
}

// Init creates the target directory.
func (s *LocalStorage) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", s.BaseDir, err)
	}
	return nil
}

// Exists reports whether filename is taken in the target directory.
func (s *LocalStorage) Exists(ctx context.Context, filename string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.BaseDir, filename))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", filename, err)
}

// Save writes data to filename inside the target directory.
func (s *LocalStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := s.checkSpace(len(data)); err != nil {
		return "", err
	}

	path := filepath.Join(s.BaseDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file %s: %w", path, err)
	}
	return path, nil
}

// Dir returns the target directory.
func (s *LocalStorage) Dir() string {
	return s.BaseDir
}

func (s *LocalStorage) checkSpace(n int) error {
	if s.freeSpace == nil {
		return nil
	}
	free, err := s.freeSpace(s.BaseDir)
	if err != nil {
		// Some filesystems do not report usage; let the write decide.
		s.logger.Debug().Err(err).Str("dir", s.BaseDir).Msg("Could not query free space")
		return nil
	}
	if free < uint64(n) {
		return fmt.Errorf("need %d bytes, %d free in %s: %w", n, free, s.BaseDir, domain.ErrInsufficientSpace)
	}
	return nil
}

func diskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
