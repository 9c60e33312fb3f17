package cell

import "interlocker/internal/spin"

// UpdateShort is Update without the argument check and with paced retries.
// After each lost race it backs off according to the cell's SpinConfig,
// spinning at first and then yielding or sleeping while contention lasts.
//
// fn is not checked up front. If it is nil, UpdateShort panics with
// ErrNilInvocation when the loop first calls it.
func (c *Cell[T]) UpdateShort(fn func(*T) *T) *T {
	defer func() {
		if fn != nil {
			return
		}
		if r := recover(); r != nil {
			panic(ErrNilInvocation)
		}
	}()

	w := spin.New(c.spin)
	for {
		cur := c.value.Load()
		next := fn(cur)
		if next == nil || c.value.CompareAndSwap(cur, next) {
			return next
		}
		w.Once()
	}
}
