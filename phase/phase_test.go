// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package phase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		degrees float64
	}{
		{name: "zero", value: 0, degrees: 0},
		{name: "solfeggio 963", value: 963, degrees: 243},
		{name: "solfeggio 528", value: 528, degrees: 168},
		{name: "exact turn", value: 360, degrees: 0},
		{name: "negative", value: -90, degrees: 270},
		{name: "negative multiple turns", value: -725, degrees: 355},
		{name: "fractional", value: 4.5, degrees: 4.5},
		{name: "tiny negative", value: -1e-20, degrees: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			s := Encode(tt.value)
			require.Equal(tt.value, s.Value)
			require.InDelta(tt.degrees, s.Degrees(), epsilon)
			require.GreaterOrEqual(s.Angle, 0.0)
			require.Less(s.Angle, 2*math.Pi)
		})
	}
}

func TestEncodePeriodic(t *testing.T) {
	require := require.New(t)

	for _, v := range []float64{0, 1, 7.25, 144, 432, 963, -17.5} {
		base := Encode(v).Angle
		for k := -3; k <= 3; k++ {
			require.InDelta(base, Encode(v+FullTurn*float64(k)).Angle, epsilon, "value %v turn %d", v, k)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewRegister(0)
	require.ErrorIs(err, ErrInvalidWidth)
	_, err = NewRegister(MaxSlots + 1)
	require.ErrorIs(err, ErrInvalidWidth)

	r, err := NewRegister(2)
	require.NoError(err)
	require.Equal(2, r.Slots())
	require.ErrorIs(r.H(2), ErrInvalidSlot)
	require.ErrorIs(r.P(-1, 0), ErrInvalidSlot)
	require.ErrorIs(r.CX(1, 1), ErrInvalidSlot)
}

func TestRegisterBellPair(t *testing.T) {
	require := require.New(t)

	r, err := NewRegister(2)
	require.NoError(err)
	require.NoError(r.H(0))
	require.NoError(r.CX(0, 1))

	d := r.Distribution()
	require.Equal(4, d.Len())
	require.InDelta(0.5, d.Prob(0), epsilon)
	require.InDelta(0.0, d.Prob(1), epsilon)
	require.InDelta(0.0, d.Prob(2), epsilon)
	require.InDelta(0.5, d.Prob(3), epsilon)

	// Phases alone never move the computational-basis marginals.
	require.NoError(r.P(0, 1.3))
	require.NoError(r.P(1, 0.4))
	require.InDelta(0.5, r.Distribution().Prob(0), epsilon)
}

func TestEntangled(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
	}{
		{name: "equal", a: 963, b: 963},
		{name: "equal modulo turn", a: 0, b: 720},
		{name: "quarter turn", a: 0, b: 90},
		{name: "half turn", a: 144, b: 324},
		{name: "pair surrogate", a: 144, b: 432},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			a, b := Encode(tt.a), Encode(tt.b)
			d := Entangled(a, b)
			cos := math.Cos(a.Angle - b.Angle)

			sum := 0.0
			for i := 0; i < d.Len(); i++ {
				sum += d.Prob(i)
			}
			require.InDelta(1.0, sum, epsilon)
			require.InDelta((1+cos)/4, d.Prob(0), epsilon)
			require.InDelta((1-cos)/4, d.Prob(1), epsilon)
			require.InDelta((1-cos)/4, d.Prob(2), epsilon)
			require.InDelta((1+cos)/4, d.Prob(3), epsilon)
		})
	}
}

func TestEntangledDecreasesWithDistance(t *testing.T) {
	require := require.New(t)

	prev := Entangled(Encode(0), Encode(0)).Prob(0)
	require.InDelta(0.5, prev, epsilon)
	for deg := 15.0; deg <= 180; deg += 15 {
		p := Entangled(Encode(0), Encode(deg)).Prob(0)
		require.Less(p, prev, "offset %v", deg)
		// symmetric in the sign of the offset
		require.InDelta(p, Entangled(Encode(deg), Encode(0)).Prob(0), epsilon)
		prev = p
	}
	require.InDelta(0.0, prev, epsilon)
}

func TestSingle(t *testing.T) {
	require := require.New(t)

	d := Single(Encode(0))
	require.Equal(2, d.Len())
	require.InDelta(1.0, d.Prob(0), epsilon)

	d = Single(Encode(180))
	require.InDelta(0.0, d.Prob(0), epsilon)
	require.InDelta(1.0, d.Prob(1), epsilon)

	d = Single(Encode(90))
	require.InDelta(0.5, d.Prob(0), epsilon)
}

func TestDistributionLabels(t *testing.T) {
	require := require.New(t)

	d := Entangled(Encode(1), Encode(2))
	require.Equal([]string{"00", "01", "10", "11"}, []string{d.Label(0), d.Label(1), d.Label(2), d.Label(3)})

	s := Single(Encode(1))
	require.Equal("0", s.Label(0))
	require.Equal("1", s.Label(1))

	w := d.Weights()
	w[0] = 42
	require.NotEqual(42.0, d.Prob(0))
}
