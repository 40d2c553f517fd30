package hashstore

import "context"

// MemoryStore is a ports.HashStore that never touches the filesystem.
// RecordErr, when set, is returned from Record after the hash is stored.
type MemoryStore struct {
	hashes    map[string]struct{}
	RecordErr error
}

// NewMemoryStore creates a MemoryStore that already knows seed.
func NewMemoryStore(seed ...string) *MemoryStore {
	m := &MemoryStore{hashes: make(map[string]struct{}, len(seed))}
	for _, h := range seed {
		m.hashes[h] = struct{}{}
	}
	return m
}

// Load reports how many hashes are known; there is nothing to read.
func (m *MemoryStore) Load(ctx context.Context) (int, error) {
	return len(m.hashes), nil
}

// Contains reports whether hash has been seen.
func (m *MemoryStore) Contains(hash string) bool {
	_, ok := m.hashes[hash]
	return ok
}

// Record stores hash and returns RecordErr.
func (m *MemoryStore) Record(ctx context.Context, hash string) error {
	m.hashes[hash] = struct{}{}
	return m.RecordErr
}

// Len returns the number of known hashes.
func (m *MemoryStore) Len() int {
	return len(m.hashes)
}
