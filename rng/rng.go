// Package rng owns the two process-wide random streams the language
// exposes: a free stream (the `?` random-choice operator) and a
// seedable, reset-reproducible stream (`??`). Both are guarded by a
// mutex so the single-threaded evaluator and any background playback
// goroutine never race on them, mirroring the shared-resource lock the
// teacher repo uses around its live FluidSynth process.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Engine holds the free and seeded generators for one interpreter instance.
// It is never a language-global singleton; the evaluator owns one and
// threads it through the execution context.
type Engine struct {
	mu     sync.Mutex
	free   *rand.Rand
	seeded *rand.Rand
	seed   int64
}

// NewEngine creates an Engine with both streams seeded from wall-clock time.
func NewEngine() *Engine {
	now := time.Now().UnixNano()
	return &Engine{
		free:   rand.New(rand.NewSource(now)),
		seeded: rand.New(rand.NewSource(now)),
		seed:   now,
	}
}

// SetSeed reseeds the seeded stream. The free stream is unaffected.
func (e *Engine) SetSeed(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed = seed
	e.seeded = rand.New(rand.NewSource(seed))
}

// ResetGen resets the seeded stream back to its last-set seed, so that
// a subsequent sequence of `??` draws reproduces a prior run exactly.
func (e *Engine) ResetGen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeded = rand.New(rand.NewSource(e.seed))
}

// Free draws an index in [0,n) from the ambient, non-reproducible stream.
func (e *Engine) Free(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= 0 {
		return 0
	}
	return e.free.Intn(n)
}

// Seeded draws an index in [0,n) from the reproducible stream.
func (e *Engine) Seeded(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= 0 {
		return 0
	}
	return e.seeded.Intn(n)
}

// WeightedFree draws an index according to non-negative weights from the
// free stream. Weights need not sum to 1: the draw is scaled by their
// total, and a total of zero or less returns index 0.
func (e *Engine) WeightedFree(weights []float64) int {
	return e.weighted(weights, false)
}

// WeightedSeeded is WeightedFree's reproducible counterpart.
func (e *Engine) WeightedSeeded(weights []float64) int {
	return e.weighted(weights, true)
}

func (e *Engine) weighted(weights []float64, seeded bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}

	var r float64
	if seeded {
		r = e.seeded.Float64() * total
	} else {
		r = e.free.Float64() * total
	}

	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}
