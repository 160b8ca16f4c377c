// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/patisserie/internal/ports/outbound"
)

// DefaultTTL applies when Set is called with a zero TTL
const DefaultTTL = 24 * time.Hour

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CacheRepository implements in-memory cache repository
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewCacheRepository creates a new in-memory cache repository that sweeps
// expired items every cleanupInterval until Close is called
func NewCacheRepository(cleanupInterval time.Duration) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		stop: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go repo.cleanup(cleanupInterval)
	}

	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || item.expired(time.Now()) {
		return nil, outbound.ErrCacheMiss
	}

	out := make([]byte, len(item.Value))
	copy(out, item.Value)
	return out, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	r.mutex.Lock()
	r.data[key] = CacheItem{Value: stored, ExpiresAt: time.Now().Add(ttl)}
	r.mutex.Unlock()

	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	delete(r.data, key)
	r.mutex.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	return exists && !item.expired(time.Now()), nil
}

// Len returns the number of stored items, expired ones included
func (r *CacheRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// Close stops the cleanup goroutine
func (r *CacheRepository) Close() {
	r.once.Do(func() { close(r.stop) })
}

// Sweep removes expired items
func (r *CacheRepository) Sweep() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for key, item := range r.data {
		if item.expired(now) {
			delete(r.data, key)
		}
	}
}

func (r *CacheRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)
