// Package spin paces retry loops that lost a compare-and-swap race.
//
// A Wait starts out busy-spinning for exponentially longer stretches, which
// is cheapest when the competing writer is about to finish. Once the spin
// budget is spent it yields the processor on every call and, periodically,
// sleeps for a short randomized period so that heavily contended loops stop
// burning CPU.
package spin

import (
	"math/rand"
	"runtime"
	"time"
)

type Config struct {
	Spins      int           // Busy-spin rounds before yielding.
	MaxSpin    int           // Upper bound on iterations in one busy-spin round.
	SleepEvery int           // After spinning, every Nth round sleeps. 0 never sleeps.
	MaxSleep   time.Duration // Upper bound on a single sleep.
}

var DefaultConfig = Config{
	Spins:      10,
	MaxSpin:    1 << 10,
	SleepEvery: 20,
	MaxSleep:   time.Millisecond,
}

const minSleep = time.Microsecond

// Wait tracks the rounds of one retry loop. It is not safe for concurrent
// use; each loop owns its own Wait.
type Wait struct {
	cfg    Config
	count  int
	sleeps int
}

// New returns a Wait using cfg. The zero Config selects DefaultConfig.
func New(cfg Config) Wait {
	if cfg == (Config{}) {
		cfg = DefaultConfig
	}
	return Wait{cfg: cfg}
}

// Count returns the number of rounds performed since the last Reset.
func (w *Wait) Count() int {
	return w.count
}

// NextSpinWillYield reports whether the next call to Once gives up the
// processor instead of busy-spinning.
func (w *Wait) NextSpinWillYield() bool {
	return w.count >= w.cfg.Spins
}

func (w *Wait) Reset() {
	w.count = 0
	w.sleeps = 0
}

// Once performs a single round of backoff.
func (w *Wait) Once() {
	n := w.count
	w.count++

	if n < w.cfg.Spins {
		iterations := w.cfg.MaxSpin
		if n < 30 && 1<<n < iterations {
			iterations = 1 << n
		}
		pause(iterations)
		return
	}

	if w.cfg.SleepEvery > 0 && (n-w.cfg.Spins+1)%w.cfg.SleepEvery == 0 {
		time.Sleep(w.sleepFor())
		return
	}

	runtime.Gosched()
}

// sleepFor doubles the base sleep with every sleep taken and adds up to the
// same amount again as jitter, capped at MaxSleep.
func (w *Wait) sleepFor() time.Duration {
	d := minSleep
	for i := 0; i < w.sleeps && d < w.cfg.MaxSleep; i++ {
		d <<= 1
	}
	w.sleeps++

	d += time.Duration(rand.Int63n(int64(d)))
	if w.cfg.MaxSleep > 0 && d > w.cfg.MaxSleep {
		d = w.cfg.MaxSleep
	}
	return d
}

//go:noinline
func pause(n int) {
	for i := 0; i < n; i++ {
	}
}
