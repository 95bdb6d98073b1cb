package cart

import (
	"sync"
	"time"
)

// Store holds session carts addressed by an opaque session key (the JWT
// subject: a user id or a guest id). Implementations must return copies;
// callers mutate and Save back.
type Store interface {
	Lines(key string) map[string]Line
	Save(key string, lines map[string]Line)
	Delete(key string)
}

// MemoryStore is the in-process Store backend. Entries expire after the
// configured TTL, matching the guest-session lifetime; authenticated users
// additionally recover through the profile mirror.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	carts map[string]memoryEntry
}

type memoryEntry struct {
	lines     map[string]Line
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		carts: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Lines(key string) map[string]Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.carts[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return make(map[string]Line)
	}
	lines := make(map[string]Line, len(entry.lines))
	for id, line := range entry.lines {
		lines[id] = line
	}
	return lines
}

func (s *MemoryStore) Save(key string, lines map[string]Line) {
	copied := make(map[string]Line, len(lines))
	for id, line := range lines {
		copied[id] = line
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = memoryEntry{lines: copied, expiresAt: time.Now().Add(s.ttl)}
	s.sweepLocked()
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
}

// sweepLocked drops expired carts. Called with the write lock held.
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for key, entry := range s.carts {
		if now.After(entry.expiresAt) {
			delete(s.carts, key)
		}
	}
}
