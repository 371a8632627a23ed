package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实 redis：STREAMHUB_TEST_REDIS=127.0.0.1:6379
func testClient(t *testing.T) *redis.Client {
	addr := os.Getenv("STREAMHUB_TEST_REDIS")
	if addr == "" {
		t.Skip("STREAMHUB_TEST_REDIS not set")
	}
	client := NewClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCountCache(t *testing.T) {
	ctx := context.Background()
	c := NewCountCache(testClient(t), time.Minute)
	key := fmt.Sprintf("test:count:%d", time.Now().UnixNano())

	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, 42))
	n, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(42), n)

	require.NoError(t, c.Invalidate(ctx, key))
	_, hit, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestLockerSerializesSameKey(t *testing.T) {
	ctx := context.Background()
	l := NewLocker(testClient(t))
	key := fmt.Sprintf("test:lock:%d", time.Now().UnixNano())

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, key)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
