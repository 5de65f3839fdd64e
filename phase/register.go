// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package phase

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// MaxSlots bounds the register width. The engine never needs more than two.
const MaxSlots = 2

var (
	ErrInvalidWidth = errors.New("invalid register width")
	ErrInvalidSlot  = errors.New("invalid register slot")
)

// Register is a statevector over a fixed number of two-level slots. Slot 0
// is the leftmost bit of an outcome label.
type Register struct {
	slots int
	amps  []complex128
}

// NewRegister returns a register of [slots] slots in the all-zero state.
func NewRegister(slots int) (*Register, error) {
	if slots < 1 || slots > MaxSlots {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, slots)
	}
	amps := make([]complex128, 1<<slots)
	amps[0] = 1
	return &Register{
		slots: slots,
		amps:  amps,
	}, nil
}

// Slots returns the register width.
func (r *Register) Slots() int {
	return r.slots
}

// H applies a Hadamard to [slot].
func (r *Register) H(slot int) error {
	mask, err := r.mask(slot)
	if err != nil {
		return err
	}
	for i := range r.amps {
		if i&mask != 0 {
			continue
		}
		a0, a1 := r.amps[i], r.amps[i|mask]
		r.amps[i] = (a0 + a1) * math.Sqrt2 / 2
		r.amps[i|mask] = (a0 - a1) * math.Sqrt2 / 2
	}
	return nil
}

// CX flips [target] wherever [control] is set.
func (r *Register) CX(control, target int) error {
	if control == target {
		return fmt.Errorf("%w: control and target are both %d", ErrInvalidSlot, control)
	}
	cmask, err := r.mask(control)
	if err != nil {
		return err
	}
	tmask, err := r.mask(target)
	if err != nil {
		return err
	}
	for i := range r.amps {
		if i&cmask == 0 || i&tmask != 0 {
			continue
		}
		r.amps[i], r.amps[i|tmask] = r.amps[i|tmask], r.amps[i]
	}
	return nil
}

// P rotates the phase of the set component of [slot] by [angle] radians.
func (r *Register) P(slot int, angle float64) error {
	mask, err := r.mask(slot)
	if err != nil {
		return err
	}
	rot := cmplx.Exp(complex(0, angle))
	for i := range r.amps {
		if i&mask != 0 {
			r.amps[i] *= rot
		}
	}
	return nil
}

// Distribution returns the outcome probabilities of measuring every slot.
func (r *Register) Distribution() Distribution {
	probs := make([]float64, len(r.amps))
	for i, a := range r.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return Distribution{
		slots: r.slots,
		probs: probs,
	}
}

func (r *Register) mask(slot int) (int, error) {
	if slot < 0 || slot >= r.slots {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidSlot, slot, r.slots)
	}
	return 1 << (r.slots - 1 - slot), nil
}

// Distribution holds the probability of every measurement outcome of a
// register. Outcome i is labeled by the binary form of i, slot 0 first.
type Distribution struct {
	slots int
	probs []float64
}

// Len returns the number of outcomes.
func (d Distribution) Len() int {
	return len(d.probs)
}

// Prob returns the probability of outcome [i].
func (d Distribution) Prob(i int) float64 {
	return d.probs[i]
}

// Weights returns a copy of the outcome probabilities.
func (d Distribution) Weights() []float64 {
	w := make([]float64, len(d.probs))
	copy(w, d.probs)
	return w
}

// Label returns the bit string naming outcome [i], e.g. "01".
func (d Distribution) Label(i int) string {
	s := strconv.FormatInt(int64(i), 2)
	if pad := d.slots - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s
}

// Entangled returns the outcome distribution of two phases imprinted on a
// correlated pair and read out through an interference step.
//
// The pair starts as (|00> + |11>)/√2. [a] is imprinted on slot 0 and the
// conjugate of [b] on slot 1, then both slots are read out through a
// Hadamard. The result is
//
//	P(00) = P(11) = (1 + cos(a-b)) / 4
//	P(01) = P(10) = (1 - cos(a-b)) / 4
//
// so the all-zero outcome has probability 1/2 for equal phases and falls to
// zero at a half-turn difference.
func Entangled(a, b State) Distribution {
	r := mustRegister(2)
	must(r.H(0))
	must(r.CX(0, 1))
	must(r.P(0, a.Angle))
	must(r.P(1, -b.Angle))
	must(r.H(0))
	must(r.H(1))
	return r.Distribution()
}

// Single returns the outcome distribution of one phase read out through an
// interferometer, P(0) = (1 + cos(angle)) / 2.
func Single(s State) Distribution {
	r := mustRegister(1)
	must(r.H(0))
	must(r.P(0, s.Angle))
	must(r.H(0))
	return r.Distribution()
}

func mustRegister(slots int) *Register {
	r, err := NewRegister(slots)
	must(err)
	return r
}

// must is only used with slot indices fixed at compile time.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
