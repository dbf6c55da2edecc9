package files

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps images in memory.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailDeletes, when set, is returned by every Delete.
	FailDeletes error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := "/" + uuid.NewString() + filepath.Ext(filename)
	s.files[path] = append([]byte(nil), data...)
	return path, nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDeletes != nil {
		return s.FailDeletes
	}
	if _, ok := s.files[path]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	delete(s.files, path)
	return nil
}

// Has reports whether path holds an image.
func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.files[path]
	return ok
}

// Len returns the number of stored images.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.files)
}
