package imagery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_BasicGetPut(t *testing.T) {
	cache := NewCache(100, time.Hour)

	assert.Nil(t, cache.Get("https://tiles.example/base.png"))

	data := []byte("png-bytes")
	cache.Put("https://tiles.example/base.png", data)
	assert.Equal(t, data, cache.Get("https://tiles.example/base.png"))

	assert.Nil(t, cache.Get("https://tiles.example/heat.png"))
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := NewCache(100, 50*time.Millisecond)

	cache.Put("ref", []byte("data"))
	assert.NotNil(t, cache.Get("ref"))

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, cache.Get("ref"))
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(3, time.Hour)

	cache.Put("a", []byte("1"))
	cache.Put("b", []byte("2"))
	cache.Put("c", []byte("3"))

	// Touch "a" so "b" becomes the eviction candidate.
	cache.Get("a")
	cache.Put("d", []byte("4"))

	assert.NotNil(t, cache.Get("a"))
	assert.Nil(t, cache.Get("b"))
	assert.NotNil(t, cache.Get("c"))
	assert.NotNil(t, cache.Get("d"))
}

func TestCache_PutSameKeyReplaces(t *testing.T) {
	cache := NewCache(2, time.Hour)
	cache.Put("a", []byte("old"))
	cache.Put("a", []byte("new"))
	assert.Equal(t, []byte("new"), cache.Get("a"))

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_Stats(t *testing.T) {
	cache := NewCache(10, time.Hour)
	cache.Put("a", []byte("1"))
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Put(key, []byte("data"))
			cache.Get(key)
		}(i)
	}
	wg.Wait()
}
