package cache

import (
	"encoding/json"
	"sync"
	"time"
)

var _ Cache = (*MapCache)(nil)

// MapCache is an unbounded, expiry-less Cache for tests.
type MapCache struct {
	mutex sync.Mutex
	items map[string][]byte
	hits  int
}

func NewMapCache() *MapCache {
	return &MapCache{
		items: make(map[string][]byte),
	}
}

func (mc *MapCache) Get(key string, dst any) bool {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	raw, ok := mc.items[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	mc.hits++
	return true
}

func (mc *MapCache) Set(key string, value any, _ time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.items[key] = raw
}

func (mc *MapCache) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.items = make(map[string][]byte)
}

func (mc *MapCache) Hits() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return mc.hits
}
