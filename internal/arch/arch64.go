//go:build !(386 || arm || mips || mipsle)

package arch

import "sync/atomic"

type AtomicUint = atomic.Uint64

const WordSize = 8

func UintToArchSize(n uint) uint64 {
	return uint64(n)
}
