package cell

import "interlocker/internal/spin"

// SpinConfig controls how UpdateShort paces retries after a lost race.
type SpinConfig = spin.Config

// DefaultSpin is the pacing used when no WithSpin option is given.
var DefaultSpin = spin.DefaultConfig

type Option interface {
	apply(*options)
}

type OptionFunc func(*options)

func (f OptionFunc) apply(o *options) {
	f(o)
}

type options struct {
	spin SpinConfig
}

// WithSpin sets the pacing UpdateShort applies between failed attempts.
func WithSpin(cfg SpinConfig) Option {
	return OptionFunc(func(o *options) {
		o.spin = cfg
	})
}
