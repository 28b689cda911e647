// Package cache implements C10: a tenant-scoped answer cache with TTL,
// grounded on the teacher's cacheServiceImpl (Redis-or-in-memory with
// graceful fallback) generalized to the key shape and fail-open semantics
// of original_source/shared/cache/redis.py's RedisCache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ragcore/ragcore/models"
)

const DefaultTTLSeconds = 300

// Cache is the answer cache contract. Every implementation is fail-open:
// a backend error is equivalent to a miss, logged at most once per call.
type Cache interface {
	Get(ctx context.Context, tenantID uuid.UUID, query string) (*models.QueryResponse, bool)
	Set(ctx context.Context, tenantID uuid.UUID, query string, resp models.QueryResponse, ttlSeconds int)
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// answerCache uses Redis when reachable at construction time, falling back
// to an in-memory map otherwise or on any later Redis error — mirroring the
// teacher's cacheServiceImpl dual-backend shape.
type answerCache struct {
	redis      *redis.Client
	useRedis   bool
	mem        map[string]memEntry
	mu         sync.RWMutex
	defaultTTL int
}

// New connects to url (if non-empty) and returns an in-memory-backed Cache
// if the connection fails; caching is never disabled outright, since the
// in-memory mode alone satisfies the "optional, fail-open" contract.
func New(url string, defaultTTLSeconds int) Cache {
	if defaultTTLSeconds <= 0 {
		defaultTTLSeconds = DefaultTTLSeconds
	}
	c := &answerCache{mem: make(map[string]memEntry), defaultTTL: defaultTTLSeconds}
	if url == "" {
		return c
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("cache: invalid CACHE_URL, falling back to in-memory: %v", err)
		return c
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("cache: redis unreachable, falling back to in-memory: %v", err)
		return c
	}
	c.redis = client
	c.useRedis = true
	return c
}

func key(tenantID uuid.UUID, query string) string {
	h := sha256.Sum256([]byte(query))
	return fmt.Sprintf("tenant:%s:rag:answer:%s", tenantID, hex.EncodeToString(h[:16]))
}

func (c *answerCache) Get(ctx context.Context, tenantID uuid.UUID, query string) (*models.QueryResponse, bool) {
	k := key(tenantID, query)

	if c.useRedis {
		data, err := c.redis.Get(ctx, k).Bytes()
		if err == nil {
			var resp models.QueryResponse
			if jsonErr := json.Unmarshal(data, &resp); jsonErr == nil {
				return &resp, true
			}
			return nil, false
		}
		if err != redis.Nil {
			log.Printf("cache: redis get failed, checking in-memory fallback: %v", err)
		}
	}

	c.mu.RLock()
	entry, ok := c.mem[k]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	var resp models.QueryResponse
	if err := json.Unmarshal(entry.data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *answerCache) Set(ctx context.Context, tenantID uuid.UUID, query string, resp models.QueryResponse, ttlSeconds int) {
	if ttlSeconds <= 0 {
		ttlSeconds = c.defaultTTL
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	k := key(tenantID, query)
	ttl := time.Duration(ttlSeconds) * time.Second

	if c.useRedis {
		if err := c.redis.Set(ctx, k, data, ttl).Err(); err != nil {
			log.Printf("cache: redis set failed, falling back to in-memory for this key: %v", err)
			c.setMem(k, data, ttl)
		}
		return
	}
	c.setMem(k, data, ttl)
}

func (c *answerCache) setMem(k string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	c.mem[k] = memEntry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}
