// Package bench drives the Cell update variants against a shared cell and
// checks that no update was lost.
package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"

	"interlocker/internal/arch"
	"interlocker/pkg/cell"
)

type Variant string

const (
	VariantUpdate  Variant = "update"
	VariantExcept  Variant = "except"
	VariantShort   Variant = "short"
	VariantIndexed Variant = "indexed"
	VariantFold    Variant = "fold"
)

var Variants = []Variant{
	VariantUpdate,
	VariantExcept,
	VariantShort,
	VariantIndexed,
	VariantFold,
}

// ParseVariant accepts a variant name or "all".
func ParseVariant(name string) ([]Variant, error) {
	if name == "all" {
		return Variants, nil
	}
	for _, v := range Variants {
		if string(v) == name {
			return []Variant{v}, nil
		}
	}
	return nil, fmt.Errorf("unknown variant %q", name)
}

type Config struct {
	N       int // Update calls per worker.
	Workers int
	Spin    cell.SpinConfig
}

// checkEvery is how many operations a worker runs between context checks.
const checkEvery = 1 << 10

// Run builds a fresh cell starting at "a" and has cfg.Workers goroutines each
// flip it cfg.N times using variant v. The returned error is non-nil if the
// run was cancelled or if Verify rejects the result.
func Run(ctx context.Context, v Variant, cfg Config) (Result, error) {
	if cfg.N <= 0 || cfg.Workers <= 0 {
		return Result{}, fmt.Errorf("bench: invalid config n=%d workers=%d", cfg.N, cfg.Workers)
	}

	op, err := v.op()
	if err != nil {
		return Result{}, err
	}

	c := cell.New(&toggle{v: "a"}, cell.WithSpin(cfg.Spin))
	attempts := arch.NewCounters(cfg.Workers)
	ops := arch.NewCounters(cfg.Workers)
	installs := arch.NewCounters(cfg.Workers)

	var (
		start atomic.Bool
		busy  atomic.Duration
		wg    sync.WaitGroup
	)

	errs := make([]error, cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			for !start.Load() {
				runtime.Gosched()
			}

			began := time.Now()
			defer func() { busy.Add(time.Since(began)) }()

			flip := func(cur *toggle) *toggle {
				attempts[w].Inc()
				return cur.flip()
			}
			for k := 0; k < cfg.N; k++ {
				if k%checkEvery == 0 && ctx.Err() != nil {
					errs[w] = ctx.Err()
					return
				}
				ops[w].Inc()
				next, err := op(c, flip)
				if err != nil {
					errs[w] = fmt.Errorf("worker %d: %w", w, err)
					return
				}
				if next != nil {
					installs[w].Inc()
				}
			}
		}(w)
	}

	began := time.Now()
	start.Store(true)
	wg.Wait()

	r := Result{
		Variant:  v,
		Workers:  cfg.Workers,
		Ops:      ops.Sum(),
		Installs: installs.Sum(),
		Attempts: attempts.Sum(),
		Elapsed:  time.Since(began),
		Busy:     busy.Load(),
		Final:    *c.Value(),
	}

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := r.Verify(); err != nil {
		result = multierror.Append(result, err)
	}

	return r, result.ErrorOrNil()
}

// RunAll runs every variant in order and collects all of their failures.
func RunAll(ctx context.Context, variants []Variant, cfg Config) ([]Result, error) {
	var result *multierror.Error
	results := make([]Result, 0, len(variants))
	for _, v := range variants {
		r, err := Run(ctx, v, cfg)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", v, err))
		}
		results = append(results, r)
		if ctx.Err() != nil {
			break
		}
	}
	return results, result.ErrorOrNil()
}

type updateFunc func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error)

func (v Variant) op() (updateFunc, error) {
	switch v {
	case VariantUpdate:
		return func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error) {
			return c.Update(flip)
		}, nil
	case VariantExcept:
		return func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error) {
			return c.UpdateExcept(flip), nil
		}, nil
	case VariantShort:
		return func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error) {
			return c.UpdateShort(flip), nil
		}, nil
	case VariantIndexed:
		return func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error) {
			return c.UpdateIndexed(func(cur *toggle, _ int) *toggle {
				return flip(cur)
			})
		}, nil
	case VariantFold:
		return func(c *cell.Cell[toggle], flip func(*toggle) *toggle) (*toggle, error) {
			return cell.Fold(c, func(cur *toggle, _ int, _ *toggle) *toggle {
				return flip(cur)
			}, self, self)
		}, nil
	default:
		return nil, fmt.Errorf("unknown variant %q", v)
	}
}

func self(t *toggle) *toggle {
	return t
}
