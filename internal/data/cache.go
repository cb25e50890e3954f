package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"microgrid-sim/internal/model"
)

// CacheEntry is one aligned dataset held in memory.
type CacheEntry struct {
	Samples   model.Samples
	ExpiresAt time.Time
}

// Cache keeps parsed datasets in memory so repeated API runs over the same
// files skip CSV parsing. Entries are keyed on file paths, sizes and
// modification times, so an edited file is re-read.
type Cache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves cached samples if available and not expired.
func (c *Cache) Get(key string) (model.Samples, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Samples, true
}

// Set stores samples in the cache.
func (c *Cache) Set(key string, samples model.Samples) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Samples:   samples,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Load returns the samples for src, reading the files on a miss.
// Callers must not modify the returned slice. A nil cache always reads.
func (c *Cache) Load(src Source, baseDir string) (model.Samples, error) {
	key, err := CacheKey(src, baseDir)
	if err != nil {
		return nil, err
	}
	if s, ok := c.Get(key); ok {
		return s, nil
	}
	s, err := src.Load(baseDir)
	if err != nil {
		return nil, err
	}
	c.Set(key, s)
	return s, nil
}

// Prune removes expired entries.
func (c *Cache) Prune() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

// Run prunes expired entries every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

// CacheKey hashes the source settings together with each file's size and mtime.
func CacheKey(src Source, baseDir string) (string, error) {
	loadPath, weatherPath := src.Resolve(baseDir)
	keyStr := fmt.Sprintf("%d:%t:%+v:%t", src.LoadColumn, src.LoadHasHeader, src.WeatherColumns, src.TrimWeather)
	for _, p := range []string{loadPath, weatherPath} {
		info, err := os.Stat(p)
		if err != nil {
			return "", err
		}
		keyStr += fmt.Sprintf("|%s:%d:%d", p, info.Size(), info.ModTime().UnixNano())
	}

	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:]), nil
}
