// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sensor provides simulated peripherals: a theta-wave reader and the
// per-participant node that captures biofield readings from it.
package sensor

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MinTheta and MaxTheta bound the theta band, in Hz.
	MinTheta = 4.0
	MaxTheta = 8.0
)

// ThetaReader stands in for an EEG headset. It is safe for concurrent use.
type ThetaReader struct {
	mu    sync.Mutex
	band  distuv.Uniform
	theta float64
}

func NewThetaReader(src rand.Source) *ThetaReader {
	return &ThetaReader{
		band: distuv.Uniform{Min: MinTheta, Max: MaxTheta, Src: src},
	}
}

// Read takes a new sample in [MinTheta, MaxTheta).
func (r *ThetaReader) Read() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.theta = r.band.Rand()
	return r.theta
}

// Theta returns the last sample, or 0 before the first Read.
func (r *ThetaReader) Theta() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.theta
}

// PinealCoherence maps the last sample linearly from the theta band onto
// [0, 1].
func (r *ThetaReader) PinealCoherence() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return min(1, max(0, (r.theta-MinTheta)/(MaxTheta-MinTheta)))
}
