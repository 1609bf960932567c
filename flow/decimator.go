package flow

import (
	"errors"
	"fmt"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/filter"
	"github.com/sigflow/sigflow/signal"
)

// ErrRatio is returned when a decimation ratio is less than one.
var ErrRatio = errors.New("decimation ratio must be at least 1")

// ErrNoAntiAlias is returned when a decimator is built without an
// anti-alias filter.
var ErrNoAntiAlias = errors.New("decimator requires an anti-alias filter")

// Decimator reduces the sample rate by an integer ratio. Every incoming
// sample passes through the anti-alias filter first, then every ratio-th
// filtered sample is kept. The output context carries the divided sample
// rate.
//
// Two stream shapes are supported: frames whose size is a multiple of the
// ratio, decimated within each frame, and single-sample streams, decimated
// across ticks with a phase counter.
type Decimator struct {
	label     string
	ratio     int
	antialias *filter.Node

	acrossTicks bool
	phase       int
}

// NewDecimator creates a decimator with the given ratio and anti-alias
// realization. AntiAlias supplies a suitable default realization.
func NewDecimator(label string, ratio int, antialias filter.Realization) *Decimator {
	d := &Decimator{
		label: label,
		ratio: ratio,
	}
	if antialias != nil {
		d.antialias = filter.New(label+".antialias", antialias)
	}
	return d
}

// AntiAlias designs the default anti-alias low-pass for the ratio: a
// windowed-sinc FIR with 8*ratio+1 taps cutting off at 80% of the target
// Nyquist frequency.
func AntiAlias(ratio int) (filter.FIR, error) {
	if ratio < 1 {
		return filter.FIR{}, ErrRatio
	}
	return filter.LowPassFIR(8*ratio+1, 0.4/float64(ratio), 1.0)
}

// Label returns the node name.
func (d *Decimator) Label() string { return d.label }

// Inputs returns the input port count.
func (d *Decimator) Inputs() int { return 1 }

// Outputs returns the output port count.
func (d *Decimator) Outputs() int { return 1 }

// Setup validates the ratio against the stream shape and publishes the
// decimated context.
func (d *Decimator) Setup(in []signal.Context) ([]signal.Context, error) {
	if d.ratio < 1 {
		return nil, ErrRatio
	}
	if d.antialias == nil {
		return nil, ErrNoAntiAlias
	}
	ctx := in[0]
	switch {
	case ctx.FrameSize%d.ratio == 0:
		d.acrossTicks = false
	case ctx.FrameSize == 1:
		d.acrossTicks = true
		d.phase = 0
	default:
		return nil, fmt.Errorf("frame size %d not divisible by ratio %d", ctx.FrameSize, d.ratio)
	}

	filtered, err := d.antialias.Setup(in)
	if err != nil {
		return nil, err
	}

	out := filtered[0].Clone()
	out.SampleRate = ctx.SampleRate / float64(d.ratio)
	if !d.acrossTicks {
		out.FrameSize = ctx.FrameSize / d.ratio
	}
	return []signal.Context{out}, nil
}

// Step filters the frame and keeps every ratio-th sample.
func (d *Decimator) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	if in[0].IsEmpty() {
		return nil, nil
	}
	filtered, err := d.antialias.Step(t, in)
	if err != nil {
		return nil, err
	}
	frame := filtered[0]

	if d.acrossTicks {
		keep := d.phase == 0
		d.phase = (d.phase + 1) % d.ratio
		if !keep {
			return nil, nil
		}
		return []signal.Frame{frame}, nil
	}

	size := frame.Data.Size() / d.ratio
	out := signal.EmptyFloat64(frame.Data.NumChannels(), size)
	for ch := range frame.Data {
		for i := 0; i < size; i++ {
			out[ch][i] = frame.Data[ch][i*d.ratio]
		}
	}
	return []signal.Frame{{Data: out, Timestamp: frame.Timestamp}}, nil
}
