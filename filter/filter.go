// Package filter provides LTI digital filters for frame streams. A filter
// is described by its Realization: direct-form FIR or a cascade of biquad
// sections. The realization is fixed at design time; there is no
// conversion between the two forms, so an FIR design always executes as
// FIR.
package filter

import (
	"errors"
	"fmt"
)

// Realization is the structural form of a filter. It is sealed: FIR and
// Cascade are the only implementations.
type Realization interface {
	// newChannel allocates the delay line for one channel.
	newChannel() channel
	validate() error
}

// channel processes one channel's samples, carrying delay-line state
// across blocks.
type channel interface {
	process(in, out []float64)
}

// FIR is a finite impulse response filter in direct form. Taps are
// applied newest-sample-first: out[n] = sum(Taps[j] * in[n-j]).
type FIR struct {
	Taps []float64
}

func (f FIR) validate() error {
	if len(f.Taps) == 0 {
		return errors.New("empty taps")
	}
	return nil
}

func (f FIR) newChannel() channel {
	return &firChannel{
		taps:  f.Taps,
		state: make([]float64, len(f.Taps)-1),
	}
}

// firChannel convolves blocks against the taps, keeping the last
// len(taps)-1 input samples as state between blocks.
type firChannel struct {
	taps  []float64
	state []float64
	buf   []float64
}

func (c *firChannel) process(in, out []float64) {
	order := len(c.taps) - 1
	c.buf = append(c.buf[:0], c.state...)
	c.buf = append(c.buf, in...)
	for i := range in {
		var acc float64
		for j, tap := range c.taps {
			acc += tap * c.buf[i+order-j]
		}
		out[i] = acc
	}
	c.state = append(c.state[:0], c.buf[len(c.buf)-order:]...)
}

// Biquad is one second-order section with coefficients normalized to
// a0 = 1.
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Cascade chains second-order sections, each with its own pair of state
// variables per channel. Sections run in transposed direct form II.
type Cascade []Biquad

func (c Cascade) validate() error {
	if len(c) == 0 {
		return errors.New("empty cascade")
	}
	return nil
}

func (c Cascade) newChannel() channel {
	return &cascadeChannel{
		sections: c,
		z1:       make([]float64, len(c)),
		z2:       make([]float64, len(c)),
	}
}

type cascadeChannel struct {
	sections Cascade
	z1, z2   []float64
}

func (c *cascadeChannel) process(in, out []float64) {
	for i, x := range in {
		for s, sec := range c.sections {
			y := sec.B0*x + c.z1[s]
			c.z1[s] = sec.B1*x - sec.A1*y + c.z2[s]
			c.z2[s] = sec.B2*x - sec.A2*y
			x = y
		}
		out[i] = x
	}
}

// Order returns the filter order of the realization.
func Order(r Realization) int {
	switch f := r.(type) {
	case FIR:
		return len(f.Taps) - 1
	case Cascade:
		return 2 * len(f)
	}
	return 0
}

// describe names the realization for errors and logs.
func describe(r Realization) string {
	switch f := r.(type) {
	case FIR:
		return fmt.Sprintf("FIR(%d taps)", len(f.Taps))
	case Cascade:
		return fmt.Sprintf("biquad cascade(%d sections)", len(f))
	}
	return "unknown realization"
}
