package pipeline

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	minFilterSize = 10000
	filterFPRate  = 0.001
)

// ExistsFunc confirms whether a match id is stored.
type ExistsFunc func(matchID string) (bool, error)

// StoredSet answers "is this match already stored?" with a bloom filter in
// front of the database. A negative from the filter is final; a positive is
// confirmed with exists.
type StoredSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	exists ExistsFunc
}

// NewStoredSet seeds a filter with the ids already in the store.
func NewStoredSet(ids []string, exists ExistsFunc) *StoredSet {
	n := uint(len(ids) * 2)
	if n < minFilterSize {
		n = minFilterSize
	}
	f := bloom.NewWithEstimates(n, filterFPRate)
	for _, id := range ids {
		f.AddString(id)
	}
	return &StoredSet{filter: f, exists: exists}
}

// Contains reports whether matchID is stored.
func (s *StoredSet) Contains(matchID string) (bool, error) {
	s.mu.Lock()
	maybe := s.filter.TestString(matchID)
	s.mu.Unlock()
	if !maybe {
		return false, nil
	}
	if s.exists == nil {
		return true, nil
	}
	return s.exists(matchID)
}

// Add records matchID as stored.
func (s *StoredSet) Add(matchID string) {
	s.mu.Lock()
	s.filter.AddString(matchID)
	s.mu.Unlock()
}
