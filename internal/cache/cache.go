package cache

import (
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// Cache stores JSON encodable values under string keys.
type Cache interface {
	Get(key string, dst any) bool
	Set(key string, value any, ttl time.Duration)
	Clear()
}

var _ Cache = (*FreeCache)(nil)

type FreeCache struct {
	cache *freecache.Cache
}

func NewFreeCache(sizeBytes int) *FreeCache {
	return &FreeCache{
		cache: freecache.NewCache(sizeBytes),
	}
}

// Get decodes the value under key into dst. A miss or an undecodable entry
// reports false.
func (fc *FreeCache) Get(key string, dst any) bool {
	raw, err := fc.cache.Get([]byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("unmarshal cached value [%s]: %s", key, err)
		fc.cache.Del([]byte(key))
		return false
	}
	return true
}

func (fc *FreeCache) Set(key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("marshal value for cache [%s]: %s", key, err)
		return
	}
	if err := fc.cache.Set([]byte(key), raw, int(ttl.Seconds())); err != nil {
		log.Errorf("set cache [%s]: %s", key, err)
	}
}

func (fc *FreeCache) Clear() {
	fc.cache.Clear()
}
