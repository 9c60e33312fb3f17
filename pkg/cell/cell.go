// Package cell provides Cell, a lock-free container for a single pointer
// that is read atomically and replaced through optimistic functional updates.
//
// An update loads the current pointer, hands it to a caller supplied
// function and tries to install the result with a compare-and-swap. A lost
// race discards the result and runs the function again against the newer
// value, so update functions must be free of side effects and safe to call
// any number of times. Returning nil from an update function declines the
// update: the cell is left untouched and nil is returned to the caller.
//
// The protocol is lock-free but not wait-free. Some caller always makes
// progress, but a single caller may lose an unbounded number of races. The
// indexed and folding variants expose the attempt count so callers can give
// up by returning nil.
package cell

import (
	"fmt"
	"sync/atomic"
)

// Cell holds a single *T. The zero Cell holds nil and is ready to use. A
// Cell must not be copied after first use.
type Cell[T any] struct {
	value atomic.Pointer[T]
	spin  SpinConfig
}

// New returns a Cell holding initial.
func New[T any](initial *T, opts ...Option) *Cell[T] {
	o := options{spin: DefaultSpin}
	for _, opt := range opts {
		opt.apply(&o)
	}

	c := &Cell[T]{spin: o.spin}
	c.value.Store(initial)

	return c
}

// Value returns the pointer most recently installed.
func (c *Cell[T]) Value() *T {
	return c.value.Load()
}

func (c *Cell[T]) String() string {
	v := c.value.Load()
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(*v)
}
