// Package rng generates simulated QC observations for calibrating the rules
package rng

import (
	"math/rand"
	"time"
)

// RNG is a random number generator
type RNG interface {
	Rand() float64
}

// Option configures a generator
type Option func(*options)

type options struct {
	seed int64
}

// WithSeed makes the sequence reproducible
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func source(opts []Option) *rand.Rand {
	o := options{seed: time.Now().UnixNano()}
	for _, opt := range opts {
		opt(&o)
	}
	return rand.New(rand.NewSource(o.seed))
}
