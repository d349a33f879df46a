package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with TTL expiry and LRU eviction.
// Used in tests and as a fallback when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	eviction *list.List
}

type memEntry struct {
	key       string
	val       []byte
	expiresAt time.Time
}

// DefaultMemoryCapacity bounds the default in-memory store.
const DefaultMemoryCapacity = 1000

// NewMemoryStore creates a bounded in-memory store.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := elem.Value.(*memEntry)
	if time.Now().After(entry.expiresAt) {
		s.eviction.Remove(elem)
		delete(s.items, key)
		return nil, ErrCacheMiss
	}
	s.eviction.MoveToFront(elem)
	return entry.val, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		entry := elem.Value.(*memEntry)
		entry.val = val
		entry.expiresAt = time.Now().Add(ttl)
		s.eviction.MoveToFront(elem)
		return nil
	}

	elem := s.eviction.PushFront(&memEntry{key: key, val: val, expiresAt: time.Now().Add(ttl)})
	s.items[key] = elem

	if s.eviction.Len() > s.capacity {
		oldest := s.eviction.Back()
		if oldest != nil {
			s.eviction.Remove(oldest)
			delete(s.items, oldest.Value.(*memEntry).key)
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if elem, ok := s.items[key]; ok {
			s.eviction.Remove(elem)
			delete(s.items, key)
		}
	}
	return nil
}
