//go:build 386 || arm || mips || mipsle

package arch

import "sync/atomic"

type AtomicUint = atomic.Uint32

const WordSize = 4

func UintToArchSize(n uint) uint32 {
	return uint32(n)
}
