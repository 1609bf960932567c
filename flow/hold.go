package flow

import (
	"errors"
	"fmt"
	"math"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// HoldPolicy selects what a hold emits on grid ticks without fresh input.
type HoldPolicy int

const (
	// HoldLast repeats the most recent sample.
	HoldLast HoldPolicy = iota
	// ZeroFill emits zeros once the stored sample has been emitted.
	ZeroFill
)

// Hold resamples an irregular sample stream onto a regular grid at the
// target rate. It is stepped every engine tick and emits on its own grid,
// so a sporadic producer upstream becomes a steady stream downstream. The
// grid is aligned to the tick of the first received sample.
type Hold struct {
	label  string
	rate   float64
	policy HoldPolicy

	divisor   uint64
	held      []float64
	consumed  bool
	primed    bool
	primeTick uint64
}

// NewHold creates a hold emitting single-sample frames at rate frames per
// second.
func NewHold(label string, rate float64, policy HoldPolicy) *Hold {
	return &Hold{
		label:  label,
		rate:   rate,
		policy: policy,
	}
}

// Label returns the node name.
func (h *Hold) Label() string { return h.label }

// Inputs returns the input port count.
func (h *Hold) Inputs() int { return 1 }

// Outputs returns the output port count.
func (h *Hold) Outputs() int { return 1 }

// SelfTimed reports that the hold runs on every tick.
func (h *Hold) SelfTimed() bool { return true }

// Pace derives the emission cadence from the base tick rate. The target
// rate must divide it integrally.
func (h *Hold) Pace(tickRate float64) error {
	if h.rate <= 0 {
		return fmt.Errorf("target rate %v, want above 0", h.rate)
	}
	d := tickRate / h.rate
	if d < 1 || math.Abs(d-math.Round(d)) > 1e-9 {
		return fmt.Errorf("target rate %v does not divide base tick rate %v", h.rate, tickRate)
	}
	h.divisor = uint64(math.Round(d))
	return nil
}

// Setup checks the stream shape and publishes the regular output context.
func (h *Hold) Setup(in []signal.Context) ([]signal.Context, error) {
	ctx := in[0]
	if ctx.FrameSize != 1 {
		return nil, fmt.Errorf("input frame size %d, want a sample stream of size 1", ctx.FrameSize)
	}
	if h.divisor == 0 {
		return nil, errors.New("hold has not been paced")
	}
	h.held = make([]float64, ctx.Channels)
	h.consumed = true
	h.primed = false

	out := ctx.Clone()
	out.SampleRate = h.rate
	out.Sporadic = false
	return []signal.Context{out}, nil
}

// Step stores fresh samples and emits on its grid.
func (h *Hold) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	if !in[0].IsEmpty() {
		for ch := range h.held {
			h.held[ch] = in[0].Data[ch][0]
		}
		h.consumed = false
		if !h.primed {
			h.primed = true
			h.primeTick = t.Index
		}
	}
	if !h.primed || (t.Index-h.primeTick)%h.divisor != 0 {
		return nil, nil
	}

	data := signal.EmptyFloat64(len(h.held), 1)
	if h.policy == HoldLast || !h.consumed {
		for ch := range h.held {
			data[ch][0] = h.held[ch]
		}
	}
	h.consumed = true
	return []signal.Frame{{Data: data, Timestamp: t.Time}}, nil
}
