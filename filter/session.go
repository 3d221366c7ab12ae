package filter

import (
	"log"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
)

// Store keeps one session's selections keyed by dimension name.
type Store interface {
	Get(dimension string) []string
	Set(dimension string, values []string)
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]string{}}
}

func (s *MemoryStore) Get(dimension string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values[dimension]
	if len(v) == 0 {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

func (s *MemoryStore) Set(dimension string, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(values) == 0 {
		delete(s.values, dimension)
		return
	}
	v := make([]string, len(values))
	copy(v, values)
	s.values[dimension] = v
}

type session struct {
	store    *MemoryStore
	lastSeen time.Time
}

// Sessions hands out one store per session id and forgets sessions idle
// for longer than ttl.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*session
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, items: map[string]*session{}, now: time.Now}
}

// NewID returns a fresh random session id.
func (s *Sessions) NewID() string {
	return uuid.NewV4().String()
}

// Store returns the store of id, creating it on first use.
func (s *Sessions) Store(id string) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		item = &session{store: NewMemoryStore()}
		s.items[id] = item
	}
	item.lastSeen = s.now()
	return item.store
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := s.now().Add(-s.ttl)
	removed := 0
	for id, item := range s.items {
		if item.lastSeen.Before(deadline) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until stop is closed.
func (s *Sessions) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[session] expired %d idle sessions", n)
			}
		}
	}
}
