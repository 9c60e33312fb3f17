package arch

const CacheLineSize = 64

// Counter is a word-sized atomic counter padded out to a full cache line, so
// that counters owned by different goroutines never share a line.
type Counter struct {
	n AtomicUint
	_ [CacheLineSize - WordSize]byte
}

func (c *Counter) Inc() {
	c.n.Add(1)
}

func (c *Counter) Add(n uint) {
	c.n.Add(UintToArchSize(n))
}

func (c *Counter) Load() uint {
	return uint(c.n.Load())
}

func (c *Counter) Reset() {
	c.n.Store(0)
}

// Counters holds one Counter per worker.
type Counters []Counter

func NewCounters(n int) Counters {
	return make(Counters, n)
}

// Sum loads every counter and returns the total. It is not a snapshot: the
// counters may move while Sum runs.
func (cs Counters) Sum() uint {
	var sum uint
	for i := range cs {
		sum += cs[i].Load()
	}
	return sum
}
