package geocoding

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"mandi/server/internal/models"
)

// Store holds resolved coordinates by normalized address. A nil value is a
// remembered failure and must be returned as found.
type Store interface {
	Get(key string) (*models.Coordinates, bool, error)
	Put(key string, coords *models.Coordinates) error
	Len() int
}

// MemoryStore is a bounded LRU store owned by a single session
type MemoryStore struct {
	cache *lru.Cache[string, *models.Coordinates]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[string, *models.Coordinates](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(key string) (*models.Coordinates, bool, error) {
	coords, ok := s.cache.Get(key)
	return coords, ok, nil
}

func (s *MemoryStore) Put(key string, coords *models.Coordinates) error {
	s.cache.Add(key, coords)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Purge drops every entry
func (s *MemoryStore) Purge() error {
	s.cache.Purge()
	return nil
}
