package arch

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterSize(t *testing.T) {
	require.Equal(t, uintptr(CacheLineSize), unsafe.Sizeof(Counter{}))
	require.Equal(t, uintptr(WordSize), unsafe.Sizeof(AtomicUint{}))
}

func TestCountersSum(t *testing.T) {
	const workers = 8
	const perWorker = 10000

	cs := NewCounters(workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(c *Counter) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.Inc()
			}
			c.Add(5)
		}(&cs[i])
	}
	wg.Wait()

	assert.Equal(t, uint(workers*(perWorker+5)), cs.Sum())

	cs[0].Reset()
	assert.Equal(t, uint((workers-1)*(perWorker+5)), cs.Sum())
}
