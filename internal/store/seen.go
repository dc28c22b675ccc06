// Package store remembers which songs were already identified during a session.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenStore is a bounded, thread-safe set of song identities. The LRU cache holds the
// exact set and the Bloom filter answers most misses without taking the cache lock path.
type SeenStore struct {
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
	// bloomAdds counts insertions since the filter was last rebuilt.
	bloomAdds int
}

// NewSeenStore creates a store that remembers up to capacity identities.
func NewSeenStore(capacity int, falsePositiveRate float64) *SeenStore {
	if capacity <= 0 {
		capacity = 1
	}
	lruCache, _ := lru.New[string, struct{}](capacity)

	return &SeenStore{
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		lru:               lruCache,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}
}

// Seen marks id as seen and reports whether it had been seen before.
// The empty id is never recorded.
func (s *SeenStore) Seen(id string) bool {
	if id == "" {
		return false
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.bloom.TestString(id) {
		if _, ok := s.lru.Get(id); ok {
			return true
		}
	}
	s.add(id)
	return false
}

// Size returns the number of identities currently remembered.
func (s *SeenStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lru.Len()
}

func (s *SeenStore) add(id string) {
	s.lru.Add(id, struct{}{})
	s.bloom.AddString(id)
	s.bloomAdds++

	// Evicted identities leave bits behind; rebuild once they outnumber live ones.
	if s.bloomAdds > 2*s.capacity {
		s.rebuildBloom()
	}
}

func (s *SeenStore) rebuildBloom() {
	s.bloom = bloom.NewWithEstimates(uint(s.capacity), s.falsePositiveRate)
	for _, id := range s.lru.Keys() {
		s.bloom.AddString(id)
	}
	s.bloomAdds = s.lru.Len()
}
