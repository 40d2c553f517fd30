package ports

import (
	"context"

	"imagefetcher/internal/core/domain"
)

// Downloader defines the contract for talking to remote image hosts.
type Downloader interface {
	// Probe issues a metadata-only request and returns the response headers.
	// Non-2xx responses are reported as *domain.HTTPStatusError.
	Probe(ctx context.Context, url string) (*domain.ResponseMeta, error)

	// Download fetches the full body. Bodies larger than maxBytes are
	// rejected with a *domain.ValidationError.
	Download(ctx context.Context, url string, maxBytes int64) (*domain.Payload, error)
}

// Storage defines the contract for the target directory.
type Storage interface {
	// Init creates the target directory if it does not exist.
	Init(ctx context.Context) error

	// Exists reports whether a file with this name is already present.
	Exists(ctx context.Context, filename string) (bool, error)

	// Save writes data under filename and returns the full path.
	Save(ctx context.Context, filename string, data []byte) (string, error)

	// Dir returns the target directory path.
	Dir() string
}

// HashStore tracks content digests of files already saved.
type HashStore interface {
	// Load reads persisted hashes into memory and returns how many are known.
	// A missing backing file is not an error.
	Load(ctx context.Context) (int, error)

	// Contains reports whether hash has been recorded.
	Contains(hash string) bool

	// Record remembers hash in memory and persists it. The hash stays in
	// memory even if persisting fails.
	Record(ctx context.Context, hash string) error
}
