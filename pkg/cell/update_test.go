package cell

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interfere installs a new value behind the back of an in-flight update so
// that its compare-and-swap fails.
func interfere(c *Cell[flips]) {
	c.UpdateExcept(flipCounted)
}

func TestUpdateIndexedAttempts(t *testing.T) {
	c := New(&flips{v: "a"})

	var attempts []int
	r, err := c.UpdateIndexed(func(cur *flips, attempt int) *flips {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			interfere(c)
		}
		return flipCounted(cur)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, attempts)
	assert.Same(t, r, c.Value())
	assert.Equal(t, 4, r.n)
}

func TestUpdateIndexedGiveUp(t *testing.T) {
	c := New(&flips{v: "a"})

	r, err := c.UpdateIndexed(func(cur *flips, attempt int) *flips {
		if attempt == 2 {
			return nil
		}
		interfere(c)
		return flipCounted(cur)
	})
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, 2, c.Value().n)
}

func TestFoldThreadsPrevious(t *testing.T) {
	c := New(&flips{v: "a"})

	type step struct {
		proposed *flips
		attempt  int
	}

	var seen []step
	res, err := Fold(c,
		func(cur *flips, attempt int, prev step) step {
			seen = append(seen, prev)
			if attempt < 2 {
				interfere(c)
			}
			return step{proposed: flipCounted(cur), attempt: attempt}
		},
		func(s step) *flips { return s.proposed },
		func(s step) int { return s.attempt },
	)
	require.NoError(t, err)

	assert.Equal(t, 2, res)
	require.Len(t, seen, 3)
	assert.Equal(t, step{}, seen[0])
	assert.Equal(t, 0, seen[1].attempt)
	assert.Equal(t, 1, seen[2].attempt)
	assert.NotSame(t, seen[1].proposed, seen[2].proposed)
	assert.Equal(t, 3, c.Value().n)
}

func TestFoldSentinelOnSelectedState(t *testing.T) {
	start := &flips{v: "a"}
	c := New(start)

	res, err := Fold(c,
		func(cur *flips, _ int, _ string) string { return "declined" },
		func(string) *flips { return nil },
		func(s string) string { return s },
	)
	require.NoError(t, err)
	assert.Equal(t, "declined", res)
	assert.Same(t, start, c.Value())
}

func TestUpdateResult(t *testing.T) {
	c := New(ptr(10))

	old, err := UpdateResult(c, func(cur *int) (*int, int) {
		return ptr(*cur * 2), *cur
	})
	require.NoError(t, err)
	assert.Equal(t, 10, old)
	assert.Equal(t, 20, *c.Value())

	msg, err := UpdateResult(c, func(cur *int) (*int, string) {
		return nil, "no change"
	})
	require.NoError(t, err)
	assert.Equal(t, "no change", msg)
	assert.Equal(t, 20, *c.Value())
}

func TestUpdateResultIndexed(t *testing.T) {
	c := New(&flips{v: "a"})

	attempts, err := UpdateResultIndexed(c, func(cur *flips, attempt int) (*flips, int) {
		if attempt == 0 {
			interfere(c)
		}
		return flipCounted(cur), attempt + 1
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, c.Value().n)
}

func TestUpdateSelect(t *testing.T) {
	type pair struct {
		next *int
		note string
	}

	c := New(ptr(1))
	note, err := UpdateSelect(c,
		func(cur *int) pair { return pair{next: ptr(*cur + 1), note: "incremented"} },
		func(p pair) *int { return p.next },
		func(p pair) string { return p.note },
	)
	require.NoError(t, err)
	assert.Equal(t, "incremented", note)
	assert.Equal(t, 2, *c.Value())

	var attempts []int
	_, err = UpdateSelectIndexed(c,
		func(cur *int, attempt int) pair {
			attempts = append(attempts, attempt)
			if attempt == 0 {
				Add(c, 10)
			}
			return pair{next: ptr(*cur + 1)}
		},
		func(p pair) *int { return p.next },
		func(p pair) string { return p.note },
	)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, attempts)
	assert.Equal(t, 13, *c.Value())
}

func TestNilArguments(t *testing.T) {
	start := &flips{v: "a"}
	c := New(start)

	r, err := c.Update(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, r)

	r, err = c.UpdateIndexed(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, r)

	_, err = UpdateResult[flips, int](c, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = UpdateResultIndexed[flips, int](c, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = UpdateSelect[flips, *flips, int](c, nil, identity[flips], func(*flips) int { return 0 })
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = UpdateSelectIndexed[flips, *flips, *flips](c, nil, identity[flips], identity[flips])
	assert.ErrorIs(t, err, ErrInvalidArgument)

	fn := func(cur *flips, _ int, _ *flips) *flips { return flipCounted(cur) }
	_, err = Fold[flips, *flips, *flips](c, nil, identity[flips], identity[flips])
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Fold[flips, *flips, *flips](c, fn, nil, identity[flips])
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Fold[flips, *flips, *flips](c, fn, identity[flips], nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.PanicsWithError(t, ErrInvalidArgument.Error(), func() {
		c.UpdateExcept(nil)
	})
	assert.PanicsWithError(t, ErrNilInvocation.Error(), func() {
		c.UpdateShort(nil)
	})

	assert.Same(t, start, c.Value())
}

func TestUpdateShortRecoverable(t *testing.T) {
	c := New(&strA)

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrNilInvocation))
		assert.Same(t, &strA, c.Value())
	}()

	c.UpdateShort(nil)
}

func TestUpdateShortKeepsCallerPanic(t *testing.T) {
	c := New(&strA)
	assert.PanicsWithValue(t, "boom", func() {
		c.UpdateShort(func(*string) *string { panic("boom") })
	})
}

func TestUpdateShortPaced(t *testing.T) {
	c := New(&flips{v: "a"}, WithSpin(SpinConfig{
		Spins:      1,
		MaxSpin:    1,
		SleepEvery: 1,
		MaxSleep:   time.Microsecond,
	}))

	calls := 0
	r := c.UpdateShort(func(cur *flips) *flips {
		calls++
		if calls <= 5 {
			interfere(c)
		}
		return flipCounted(cur)
	})

	assert.Equal(t, 6, calls)
	assert.Same(t, r, c.Value())
	assert.Equal(t, 6, r.n)
}
