package cache

import (
	"context"
	"time"
)

// Cache is the shared cache contract. The geo client memoizes place details
// and reverse-geocode lookups in it so repeated resolutions of the same
// place skip the provider.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	GetWithTTL(ctx context.Context, key string) (interface{}, time.Duration, bool)
	Clear(ctx context.Context) error
	Close() error
}

type Config struct {
	// Type selects the backend: "local" or "redis".
	Type string

	Redis RedisConfig
	Local LocalConfig
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LocalConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

func DefaultLocalConfig() LocalConfig {
	return LocalConfig{DefaultExpiration: 5 * time.Minute, CleanupInterval: 10 * time.Minute}
}
