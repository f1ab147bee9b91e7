package destination

import (
	"context"
	"math/rand/v2"
	"time"
)

// Rand is the random source used for mock and fallback selection.
// *rand.Rand from math/rand/v2 satisfies it but is not safe for concurrent
// use; share one only between components that never run at the same time.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// globalRand uses the goroutine-safe top-level functions of math/rand/v2.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand returns the process-wide random source.
func DefaultRand() Rand { return globalRand{} }

// pick returns a random element of options. options must not be empty.
func pick[T any](rnd Rand, options []T) T {
	return options[rnd.IntN(len(options))]
}

// pause waits for d or until ctx is done. A non-positive d returns immediately.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
