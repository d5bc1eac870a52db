package cache

import (
	"container/list"
	"sync"
	"time"
)

// localStore is a bounded in-process LRU with per-entry TTL. It backs the
// shared cache when Redis is unreachable, so capacity stays small and
// eviction is strict.
type localStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

type localEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func newLocalStore(capacity int) *localStore {
	return &localStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

func (s *localStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*localEntry)
	if s.now().After(entry.expiresAt) {
		s.order.Remove(el)
		delete(s.entries, key)
		return nil, false
	}
	s.order.MoveToFront(el)
	return entry.value, true
}

func (s *localStore) set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if el, ok := s.entries[key]; ok {
		entry := el.Value.(*localEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		s.order.MoveToFront(el)
		return
	}

	s.entries[key] = s.order.PushFront(&localEntry{key: key, value: value, expiresAt: expiresAt})

	for len(s.entries) > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*localEntry).key)
	}
}

func (s *localStore) has(key string) bool {
	_, ok := s.get(key)
	return ok
}

func (s *localStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
