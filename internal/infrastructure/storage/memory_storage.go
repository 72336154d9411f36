package storage

import (
	"context"
	"sync"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
)

var _ designerapp.AssetStore = (*MemoryAssetStore)(nil)

type memoryAsset struct {
	data        []byte
	contentType string
}

// MemoryAssetStore keeps assets in process memory.
// Use this for tests and single-instance development.
type MemoryAssetStore struct {
	mu     sync.RWMutex
	assets map[string]memoryAsset
}

// NewMemoryAssetStore creates an empty MemoryAssetStore
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{assets: make(map[string]memoryAsset)}
}

// Put stores a copy of data
func (s *MemoryAssetStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if contentType == "" {
		contentType = DetectContentType(data)
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.assets[key] = memoryAsset{data: buf, contentType: contentType}
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the stored bytes
func (s *MemoryAssetStore) Get(_ context.Context, key string) ([]byte, string, error) {
	if !validKey(key) {
		return nil, "", ErrInvalidKey
	}
	s.mu.RLock()
	a, ok := s.assets[key]
	s.mu.RUnlock()
	if !ok {
		return nil, "", ErrAssetNotFound
	}
	buf := make([]byte, len(a.data))
	copy(buf, a.data)
	return buf, a.contentType, nil
}

// Exists checks if key is stored
func (s *MemoryAssetStore) Exists(_ context.Context, key string) (bool, error) {
	if !validKey(key) {
		return false, ErrInvalidKey
	}
	s.mu.RLock()
	_, ok := s.assets[key]
	s.mu.RUnlock()
	return ok, nil
}

// Delete removes key
func (s *MemoryAssetStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	s.mu.Lock()
	delete(s.assets, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored assets
func (s *MemoryAssetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
