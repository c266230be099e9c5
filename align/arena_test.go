package align

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocWithinCap(t *testing.T) {
	a := NewArena(1) // 1MB
	buf, err := a.Alloc(1 << 10)
	require.NoError(t, err)
	assert.Len(t, buf, 1<<10)
	assert.Equal(t, int64(1<<10), a.Used())
}

func TestArenaAllocRefusesOverCap(t *testing.T) {
	a := NewArena(1) // 1MB cap
	_, err := a.Alloc(2 << 20)
	assert.Error(t, err)
	assert.Equal(t, int64(0), a.Used())
}

func TestArenaReleaseReturnsCapacity(t *testing.T) {
	a := NewArena(1)
	buf, err := a.Alloc(1 << 10)
	require.NoError(t, err)
	a.Release(len(buf))
	assert.Equal(t, int64(0), a.Used())
}

func TestArenaConcurrentAllocNeverExceedsCap(t *testing.T) {
	a := NewArena(1) // 1<<20 bytes
	const chunk = 4096
	const workers = 64
	var wg sync.WaitGroup
	var succeeded int32
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.Alloc(chunk); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, a.Used(), a.CapBytes())
	assert.LessOrEqual(t, int64(succeeded)*chunk, a.CapBytes())
}
