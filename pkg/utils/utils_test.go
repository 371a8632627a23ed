package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeMonotonic(t *testing.T) {
	sf, err := NewSnowflake(3, 4)
	require.NoError(t, err)

	prev := sf.GenerateID()
	for i := 0; i < 10000; i++ {
		id := sf.GenerateID()
		require.Greater(t, id, prev)
		prev = id
	}

	parts := ParseID(prev)
	assert.Equal(t, int64(4), parts.DatacenterID)
	assert.Equal(t, int64(3), parts.WorkerID)
	assert.InDelta(t, time.Now().UnixMilli(), parts.UnixMilli, 5000)
}

func TestSnowflakeRange(t *testing.T) {
	_, err := NewSnowflake(32, 0)
	assert.Error(t, err)
	_, err = NewSnowflake(0, -1)
	assert.Error(t, err)
}

func TestNextIDConcurrentUnique(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		wg   sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := NextID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8*500)
}

func TestTransfer(t *testing.T) {
	assert.Equal(t, int64(42), Transfer(float64(42)))
	assert.Equal(t, int64(42), Transfer("42"))
	assert.Equal(t, int64(42), Transfer(int64(42)))
	assert.Equal(t, int64(-1), Transfer("abc"))
	assert.Equal(t, int64(-1), Transfer(nil))
}
