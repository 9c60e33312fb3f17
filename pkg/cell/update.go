package cell

import (
	"golang.org/x/exp/constraints"
)

// Update installs fn applied to the current value and returns what fn
// produced. If fn returns nil the cell is left unchanged and nil is
// returned. Update returns ErrInvalidArgument if fn is nil.
func (c *Cell[T]) Update(fn func(*T) *T) (*T, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return fold(c, plain(fn), identity[T], identity[T]), nil
}

// UpdateExcept behaves like Update but panics with ErrInvalidArgument when
// fn is nil instead of returning an error.
func (c *Cell[T]) UpdateExcept(fn func(*T) *T) *T {
	if fn == nil {
		argumentNil()
	}
	return fold(c, plain(fn), identity[T], identity[T])
}

// UpdateIndexed is Update where fn also receives the number of attempts
// already made by this call, starting at 0.
func (c *Cell[T]) UpdateIndexed(fn func(cur *T, attempt int) *T) (*T, error) {
	if fn == nil {
		return nil, ErrInvalidArgument
	}
	return fold(c, func(cur *T, attempt int, _ *T) *T {
		return fn(cur, attempt)
	}, identity[T], identity[T]), nil
}

// UpdateResult installs the first value fn returns and hands the second one
// back to the caller once the install succeeds or is declined.
func UpdateResult[T, R any](c *Cell[T], fn func(cur *T) (*T, R)) (R, error) {
	if fn == nil {
		var zero R
		return zero, ErrInvalidArgument
	}
	return fold(c, func(cur *T, _ int, _ outcome[T, R]) outcome[T, R] {
		state, result := fn(cur)
		return outcome[T, R]{state: state, result: result}
	}, outcome[T, R].getState, outcome[T, R].getResult), nil
}

// UpdateResultIndexed is UpdateResult with the attempt index.
func UpdateResultIndexed[T, R any](c *Cell[T], fn func(cur *T, attempt int) (*T, R)) (R, error) {
	if fn == nil {
		var zero R
		return zero, ErrInvalidArgument
	}
	return fold(c, func(cur *T, attempt int, _ outcome[T, R]) outcome[T, R] {
		state, result := fn(cur, attempt)
		return outcome[T, R]{state: state, result: result}
	}, outcome[T, R].getState, outcome[T, R].getResult), nil
}

// UpdateSelect runs fn once per attempt and uses state to pick the value to
// install and result to pick what is returned.
func UpdateSelect[T, U, R any](c *Cell[T], fn func(cur *T) U, state func(U) *T, result func(U) R) (R, error) {
	if fn == nil {
		var zero R
		return zero, ErrInvalidArgument
	}
	return Fold(c, func(cur *T, _ int, _ U) U {
		return fn(cur)
	}, state, result)
}

// UpdateSelectIndexed is UpdateSelect with the attempt index.
func UpdateSelectIndexed[T, U, R any](c *Cell[T], fn func(cur *T, attempt int) U, state func(U) *T, result func(U) R) (R, error) {
	if fn == nil {
		var zero R
		return zero, ErrInvalidArgument
	}
	return Fold(c, func(cur *T, attempt int, _ U) U {
		return fn(cur, attempt)
	}, state, result)
}

// Fold is the general update. On every attempt fn receives the current
// value, the attempt index and the value it produced on the previous,
// rejected attempt (the zero U on attempt 0). state selects the pointer to
// install; a nil selection ends the call without a write. Once the install
// succeeds or is declined, result selects what Fold returns.
//
// Fold returns ErrInvalidArgument if any of the functions is nil.
func Fold[T, U, R any](c *Cell[T], fn func(cur *T, attempt int, prev U) U, state func(U) *T, result func(U) R) (R, error) {
	if fn == nil || state == nil || result == nil {
		var zero R
		return zero, ErrInvalidArgument
	}
	return fold(c, fn, state, result), nil
}

// Add adds delta to the number held by c, treating nil as zero, and returns
// the sum it installed.
func Add[N constraints.Integer | constraints.Float](c *Cell[N], delta N) N {
	sum := c.UpdateExcept(func(cur *N) *N {
		var n N
		if cur != nil {
			n = *cur
		}
		n += delta
		return &n
	})
	return *sum
}

// fold is the retry loop. Every successful CompareAndSwap is the
// linearization point of exactly one call.
func fold[T, U, R any](c *Cell[T], fn func(*T, int, U) U, state func(U) *T, result func(U) R) R {
	var prev U
	for attempt := 0; ; attempt++ {
		cur := c.value.Load()
		next := fn(cur, attempt, prev)
		proposed := state(next)
		if proposed == nil || c.value.CompareAndSwap(cur, proposed) {
			return result(next)
		}
		prev = next
	}
}

type outcome[T, R any] struct {
	state  *T
	result R
}

func (o outcome[T, R]) getState() *T {
	return o.state
}

func (o outcome[T, R]) getResult() R {
	return o.result
}

func identity[T any](v *T) *T {
	return v
}

func plain[T any](fn func(*T) *T) func(*T, int, *T) *T {
	return func(cur *T, _ int, _ *T) *T {
		return fn(cur)
	}
}
