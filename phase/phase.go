// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package phase encodes scalar inputs as phase angles and simulates the
// small registers used to turn a pair of phases into an outcome
// distribution.
package phase

import (
	"fmt"
	"math"
)

const (
	// FullTurn is the period, in input units, of the encoding.
	FullTurn = 360.0

	radiansPerUnit = math.Pi / 180
)

// State is a scalar input together with its phase angle.
type State struct {
	// Value is the encoded input, typically a frequency in Hz.
	Value float64
	// Angle is in radians, within [0, 2π).
	Angle float64
}

// Encode reduces [value] modulo one full turn and converts it to radians.
// Every real input is accepted; inputs that differ by a whole number of turns
// encode to the same angle.
func Encode(value float64) State {
	reduced := math.Mod(value, FullTurn)
	if reduced < 0 {
		reduced += FullTurn
	}
	// -ε mod 360 rounds up to exactly 360 for tiny ε.
	if reduced >= FullTurn {
		reduced = 0
	}
	return State{
		Value: value,
		Angle: reduced * radiansPerUnit,
	}
}

// Degrees returns the angle in degrees, within [0, 360).
func (s State) Degrees() float64 {
	return s.Angle / radiansPerUnit
}

func (s State) String() string {
	return fmt.Sprintf("%g@%.2f°", s.Value, s.Degrees())
}
