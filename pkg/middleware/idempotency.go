package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// IdemStore tracks seen idempotency keys. Set returns false when the key
// is still live, which means the request is a duplicate.
type IdemStore interface {
	Set(key string, ttl time.Duration) bool
}

type memoryIdemStore struct {
	mu sync.Mutex
	m  map[string]time.Time
}

func newMemoryIdemStore() *memoryIdemStore {
	s := &memoryIdemStore{m: make(map[string]time.Time)}
	go s.gc()
	return s
}

func (s *memoryIdemStore) Set(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if exp, ok := s.m[key]; ok && exp.After(now) {
		return false
	}
	s.m[key] = now.Add(ttl)
	return true
}

func (s *memoryIdemStore) gc() {
	for {
		time.Sleep(time.Minute)
		now := time.Now()
		s.mu.Lock()
		for k, exp := range s.m {
			if exp.Before(now) {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// Idempotency rejects a repeated Idempotency-Key within ttl. It is the
// server-side double-submit guard on report creation; requests without a
// key pass through untouched.
func Idempotency(ttl time.Duration) gin.HandlerFunc {
	store := newMemoryIdemStore()
	return IdempotencyWithStore(store, ttl)
}

func IdempotencyWithStore(store IdemStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}
		if !store.Set(c.Request.Method+":"+c.FullPath()+":"+key, ttl) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "duplicate submission",
			})
			return
		}
		c.Next()
	}
}
