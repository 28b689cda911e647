package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore/ragcore/models"
)

func setupMiniredis(t *testing.T) string {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return fmt.Sprintf("redis://%s", mr.Addr())
}

// spec.md §8 cache law: a hit returns exactly the answer stored for the
// same (tenant, query) key within TTL.
func TestCache_RedisBackedRoundTrip(t *testing.T) {
	url := setupMiniredis(t)
	c := New(url, 60)

	tenantID := uuid.New()
	resp := models.QueryResponse{Response: "The salary of Akinkuolie, Sarah is $95,000.", Confidence: 0.9}

	_, hit := c.Get(context.Background(), tenantID, "what is the salary of Akinkuolie, Sarah?")
	assert.False(t, hit)

	c.Set(context.Background(), tenantID, "what is the salary of Akinkuolie, Sarah?", resp, 60)

	got, hit := c.Get(context.Background(), tenantID, "what is the salary of Akinkuolie, Sarah?")
	require.True(t, hit)
	assert.Equal(t, resp, *got)
}

func TestCache_DistinctTenantsDoNotShareEntries(t *testing.T) {
	url := setupMiniredis(t)
	c := New(url, 60)

	tenantA := uuid.New()
	tenantB := uuid.New()
	resp := models.QueryResponse{Response: "answer for tenant A"}

	c.Set(context.Background(), tenantA, "same query", resp, 60)

	_, hit := c.Get(context.Background(), tenantB, "same query")
	assert.False(t, hit)
}

func TestCache_InMemoryFallbackWhenRedisUnreachable(t *testing.T) {
	c := New("redis://127.0.0.1:1", 60)

	tenantID := uuid.New()
	resp := models.QueryResponse{Response: "hello"}
	c.Set(context.Background(), tenantID, "q", resp, 60)

	got, hit := c.Get(context.Background(), tenantID, "q")
	require.True(t, hit)
	assert.Equal(t, resp, *got)
}

func TestCache_InMemoryExpiresAfterTTL(t *testing.T) {
	c := New("", 0)

	tenantID := uuid.New()
	resp := models.QueryResponse{Response: "hello"}
	inner := c.(*answerCache)
	inner.Set(context.Background(), tenantID, "q", resp, 1)

	// Force-expire without sleeping in real time.
	k := key(tenantID, "q")
	inner.mu.Lock()
	entry := inner.mem[k]
	entry.expiresAt = time.Now().Add(-time.Second)
	inner.mem[k] = entry
	inner.mu.Unlock()

	_, hit := c.Get(context.Background(), tenantID, "q")
	assert.False(t, hit)
}
