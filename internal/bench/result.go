package bench

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// toggle is the benchmark state: it alternates between "a" and "b" and counts
// how many times it has been installed.
type toggle struct {
	v string
	n uint
}

func (t *toggle) flip() *toggle {
	next := &toggle{v: "a", n: t.n + 1}
	if t.v == "a" {
		next.v = "b"
	}
	return next
}

type Result struct {
	Variant  Variant
	Workers  int
	Ops      uint          // Update calls issued.
	Installs uint          // Calls that installed a value.
	Attempts uint          // Transform invocations, including lost races.
	Elapsed  time.Duration // Wall clock.
	Busy     time.Duration // Summed across workers.
	Final    toggle
}

func (r Result) NsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Ops)
}

// Retries returns the transform invocations wasted on lost races.
func (r Result) Retries() uint {
	if r.Attempts < r.Ops {
		return 0
	}
	return r.Attempts - r.Ops
}

func (r Result) String() string {
	return fmt.Sprintf("%-8s workers=%d ops=%d installs=%d retries=%d elapsed=%v %.2f ns/op final=%s",
		r.Variant, r.Workers, r.Ops, r.Installs, r.Retries(), r.Elapsed, r.NsPerOp(), r.Final.v)
}

// Verify checks that every issued update was installed exactly once and that
// the final state agrees with the number of installs.
func (r Result) Verify() error {
	var result *multierror.Error

	if r.Installs != r.Ops {
		result = multierror.Append(result, fmt.Errorf("installs %d != ops %d", r.Installs, r.Ops))
	}
	if r.Final.n != r.Installs {
		result = multierror.Append(result, fmt.Errorf("lost updates: cell counted %d installs, workers %d", r.Final.n, r.Installs))
	}
	if r.Attempts < r.Ops {
		result = multierror.Append(result, fmt.Errorf("attempts %d < ops %d", r.Attempts, r.Ops))
	}

	want := "a"
	if r.Final.n%2 == 1 {
		want = "b"
	}
	if r.Final.v != want {
		result = multierror.Append(result, fmt.Errorf("final value %q after %d flips, want %q", r.Final.v, r.Final.n, want))
	}

	return result.ErrorOrNil()
}
