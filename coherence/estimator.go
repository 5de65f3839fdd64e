// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package coherence estimates how closely two phase-encoded inputs agree by
// sampling the outcome distribution of their entangled register.
//
// An estimate is the fraction of trials that measured the all-zero outcome.
// For equal inputs it is 1/2 in expectation and it falls towards zero as the
// phase difference approaches a half-turn. Sampling noise is of order
// 1/sqrt(trials).
//
// Randomness is always injected. Estimators built from the same seed produce
// the same counts and the same fingerprints.
package coherence

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/luxfi/resonance/phase"
)

// DefaultTrials is the number of trials per estimate unless the caller asks
// for more or fewer.
const DefaultTrials = 1024

// BothZero labels the outcome counted towards coherence.
const BothZero = "00"

// Result is one coherence estimate between two inputs.
type Result struct {
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	Coherence   float64 `json:"coherence"`
	Trials      int     `json:"trials"`
	Counts      Counts  `json:"counts"`
	Fingerprint string  `json:"fingerprint"`
}

func (r Result) String() string {
	return fmt.Sprintf("%g~%g coherence=%.4f trials=%d fingerprint=%s", r.A, r.B, r.Coherence, r.Trials, r.Fingerprint)
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithMetrics reports every estimate to [m].
func WithMetrics(m *Metrics) Option {
	return func(e *Estimator) {
		e.metrics = m
	}
}

// Estimator samples phase distributions. It is safe for concurrent use, but
// concurrent callers share one random stream; use Fork to give each worker a
// reproducible stream of its own.
type Estimator struct {
	mu      sync.Mutex
	src     rand.Source
	metrics *Metrics
}

// New returns an Estimator drawing from [src].
func New(src rand.Source, opts ...Option) *Estimator {
	e := &Estimator{src: src}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSeeded returns an Estimator over a PCG stream seeded with [seed].
func NewSeeded(seed uint64, opts ...Option) *Estimator {
	return New(rand.NewPCG(seed, seed), opts...)
}

// Fork returns an Estimator with an independent stream seeded from this one.
// Forks taken in the same order from equally seeded parents are identical.
func (e *Estimator) Fork() *Estimator {
	e.mu.Lock()
	hi, lo := e.src.Uint64(), e.src.Uint64()
	e.mu.Unlock()

	return &Estimator{
		src:     rand.NewPCG(hi, lo),
		metrics: e.metrics,
	}
}

// Estimate encodes [a] and [b], entangles them and samples the joint outcome
// [trials] times.
//
// trials must be at least 1.
func (e *Estimator) Estimate(a, b float64, trials int) Result {
	if trials < 1 {
		panic(fmt.Sprintf("coherence: trials must be positive, got %d", trials))
	}

	dist := phase.Entangled(phase.Encode(a), phase.Encode(b))
	counts := e.draw(dist, trials)
	res := Result{
		A:           a,
		B:           b,
		Coherence:   float64(counts[BothZero]) / float64(trials),
		Trials:      trials,
		Counts:      counts,
		Fingerprint: Fingerprint(counts),
	}
	e.metrics.observe(res)
	return res
}

// Sample measures the single-slot interferometer of [s] [shots] times.
func (e *Estimator) Sample(s phase.State, shots int) Counts {
	if shots < 1 {
		panic(fmt.Sprintf("coherence: shots must be positive, got %d", shots))
	}
	return e.draw(phase.Single(s), shots)
}

func (e *Estimator) draw(dist phase.Distribution, n int) Counts {
	e.mu.Lock()
	defer e.mu.Unlock()

	cat := distuv.NewCategorical(dist.Weights(), e.src)
	counts := make(Counts, dist.Len())
	for range n {
		counts[dist.Label(int(cat.Rand()))]++
	}
	return counts
}
