package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is a process-local Store implementation with TTL semantics.
// It is concurrency-safe and suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*memoryEntry
	tick  *time.Ticker
	clock func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryStore constructs an in-memory store with a background janitor.
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		data:  make(map[string]*memoryEntry),
		tick:  time.NewTicker(time.Minute),
		clock: time.Now,
	}

	go store.cleanupLoop()
	return store
}

func (s *MemoryStore) cleanupLoop() {
	for range s.tick.C {
		now := s.clock()
		s.mu.Lock()
		for key, entry := range s.data {
			if entry.expired(now) {
				delete(s.data, key)
			}
		}
		s.mu.Unlock()
	}
}

// IncrementWithTTL atomically increments a counter for the supplied key.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok || entry.expired(now) {
		entry = &memoryEntry{value: []byte("0"), expiresAt: now.Add(window)}
		s.data[key] = entry
	}

	count, _ := strconv.ParseInt(string(entry.value), 10, 64)
	count++
	entry.value = []byte(strconv.FormatInt(count, 10))

	return count, entry.expiresAt.Sub(now), nil
}

// Set stores a value with an optional TTL. A non-positive TTL keeps the entry forever.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.clock()

	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	s.data[key] = entry
	s.mu.Unlock()
	return nil
}

// Get retrieves a value by key, respecting expiry.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(now) {
		delete(s.data, key)
		return nil, false, nil
	}

	return append([]byte(nil), entry.value...), true, nil
}

// Delete removes keys from the store.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return nil
}
