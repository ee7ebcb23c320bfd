package storage

import (
	"context"
	"errors"
	"sync"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
)

// Ensure MemoryFileStore implements FileStore
var _ appaccounting.FileStore = (*MemoryFileStore)(nil)

// MemoryFileStore keeps objects in memory. Use it for development and
// tests when no S3-compatible backend is available.
type MemoryFileStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryFileStore creates a new MemoryFileStore
func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{objects: make(map[string][]byte)}
}

// Put stores an object and returns its path within the category
func (s *MemoryFileStore) Put(ctx context.Context, category, path string, body []byte) (string, error) {
	key, err := objectKey(category, path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = buf
	return path, nil
}

// Copy duplicates an object between categories and returns the destination path
func (s *MemoryFileStore) Copy(ctx context.Context, srcCategory, srcPath, dstCategory, dstPath string) (string, error) {
	srcKey, err := objectKey(srcCategory, srcPath)
	if err != nil {
		return "", err
	}
	dstKey, err := objectKey(dstCategory, dstPath)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[srcKey]
	if !ok {
		return "", errors.New("source object does not exist")
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[dstKey] = buf
	return dstPath, nil
}

// Get reads an object's contents
func (s *MemoryFileStore) Get(ctx context.Context, category, path string) ([]byte, error) {
	key, err := objectKey(category, path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object does not exist")
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	return buf, nil
}

// Len returns the number of stored objects
func (s *MemoryFileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
