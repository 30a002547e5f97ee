package storage

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
)

// CachedStore keeps recently read objects in memory in front of another
// store. Entries are evicted least recently used first and expire after the
// configured TTL. Writes go through to the underlying store and refresh the
// cached copy.
type CachedStore struct {
	next   Store
	config config.CacheConfig
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]*cacheEntry
	lru   *list.List
}

type cacheEntry struct {
	key     string
	data    []byte
	expiry  time.Time
	element *list.Element
}

// NewCachedStore wraps next with a cache. With MaxEntries 0 every call goes
// straight to next.
func NewCachedStore(next Store, cfg config.CacheConfig, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{
		next:   next,
		config: cfg,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
	}
}

// Get returns the cached copy of key or reads it from the underlying store.
func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.lookup(key); ok {
		s.logger.Debug("object served from cache", zap.String("key", key))
		return data, nil
	}
	data, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.set(key, data)
	return slices.Clone(data), nil
}

// Put writes data to the underlying store, then caches it.
func (s *CachedStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.next.Put(ctx, key, data, contentType); err != nil {
		s.Remove(key)
		return err
	}
	s.set(key, data)
	return nil
}

// Exists answers from the cache when it holds key.
func (s *CachedStore) Exists(ctx context.Context, key string) (bool, error) {
	if _, ok := s.lookup(key); ok {
		return true, nil
	}
	return s.next.Exists(ctx, key)
}

func (s *CachedStore) lookup(key string) ([]byte, bool) {
	if s.config.MaxEntries == 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if s.config.TTL > 0 && s.now().After(entry.expiry) {
		s.remove(entry)
		return nil, false
	}
	s.lru.MoveToFront(entry.element)
	return slices.Clone(entry.data), true
}

func (s *CachedStore) set(key string, data []byte) {
	if s.config.MaxEntries == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiry time.Time
	if s.config.TTL > 0 {
		expiry = s.now().Add(s.config.TTL)
	}

	if existing, ok := s.cache[key]; ok {
		existing.data = slices.Clone(data)
		existing.expiry = expiry
		s.lru.MoveToFront(existing.element)
		return
	}

	if s.lru.Len() >= s.config.MaxEntries {
		if oldest := s.lru.Back(); oldest != nil {
			s.remove(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{key: key, data: slices.Clone(data), expiry: expiry}
	entry.element = s.lru.PushFront(entry)
	s.cache[key] = entry
}

// remove drops entry. The caller holds mu.
func (s *CachedStore) remove(entry *cacheEntry) {
	delete(s.cache, entry.key)
	s.lru.Remove(entry.element)
}

// Remove drops key from the cache.
func (s *CachedStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.cache[key]; ok {
		s.remove(entry)
	}
}

// Clear empties the cache.
func (s *CachedStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
	s.lru = list.New()
}

// Len returns the number of cached objects.
func (s *CachedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
