package cell

import "errors"

var (
	ErrInvalidArgument = errors.New("interlocker: update function is nil")
	ErrNilInvocation   = errors.New("interlocker: nil update function invoked")
)

// argumentNil is kept out of line so the checked fast paths stay small.
//
//go:noinline
func argumentNil() {
	panic(ErrInvalidArgument)
}
