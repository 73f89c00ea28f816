package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// localCache is the in-process backend over patrickmn/go-cache.
type localCache struct {
	c *gocache.Cache
}

func NewLocalCache(cfg LocalConfig) Cache {
	if cfg.DefaultExpiration <= 0 {
		cfg = DefaultLocalConfig()
	}
	return &localCache{c: gocache.New(cfg.DefaultExpiration, cfg.CleanupInterval)}
}

func (lc *localCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return lc.c.Get(key)
}

func (lc *localCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	lc.c.Set(key, value, expiration)
	return nil
}

func (lc *localCache) Delete(ctx context.Context, key string) error {
	lc.c.Delete(key)
	return nil
}

func (lc *localCache) Exists(ctx context.Context, key string) bool {
	_, ok := lc.c.Get(key)
	return ok
}

func (lc *localCache) GetWithTTL(ctx context.Context, key string) (interface{}, time.Duration, bool) {
	value, exp, ok := lc.c.GetWithExpiration(key)
	if !ok {
		return nil, 0, false
	}
	if exp.IsZero() {
		return value, 0, true
	}
	return value, time.Until(exp), true
}

func (lc *localCache) Clear(ctx context.Context) error {
	lc.c.Flush()
	return nil
}

func (lc *localCache) Close() error { return nil }
