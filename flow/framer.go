package flow

import (
	"fmt"
	"time"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// Framer accumulates a sample stream into fixed-size frames. The input
// must be a stream of single-sample frames; the output carries size
// samples per frame, advancing by stride samples between frames, so
// consecutive frames overlap by size-stride samples. The rolling buffer
// is owned by the instance.
type Framer struct {
	label           string
	size            int
	stride          int
	finalizePartial bool

	buf        signal.Float64
	timestamps []time.Duration
}

// FramerOption configures a framer.
type FramerOption func(*Framer)

// FinalizePartial emits the buffered remainder as a shorter final frame
// when the run drains. Without it, a partial frame is dropped.
func FinalizePartial() FramerOption {
	return func(f *Framer) {
		f.finalizePartial = true
	}
}

// NewFramer creates a framer emitting frames of size samples every stride
// samples. A stride of 0 means no overlap.
func NewFramer(label string, size, stride int, options ...FramerOption) *Framer {
	f := &Framer{
		label:  label,
		size:   size,
		stride: stride,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Label returns the node name.
func (f *Framer) Label() string { return f.label }

// Inputs returns the input port count.
func (f *Framer) Inputs() int { return 1 }

// Outputs returns the output port count.
func (f *Framer) Outputs() int { return 1 }

// Setup checks the stream shape and publishes the framed context.
func (f *Framer) Setup(in []signal.Context) ([]signal.Context, error) {
	ctx := in[0]
	if ctx.FrameSize != 1 {
		return nil, fmt.Errorf("input frame size %d, want a sample stream of size 1", ctx.FrameSize)
	}
	if f.size < 1 {
		return nil, fmt.Errorf("frame size %d, want at least 1", f.size)
	}
	if f.stride == 0 {
		f.stride = f.size
	}
	if f.stride < 1 || f.stride > f.size {
		return nil, fmt.Errorf("stride %d outside 1..%d", f.stride, f.size)
	}
	f.buf = make(signal.Float64, ctx.Channels)
	f.timestamps = f.timestamps[:0]

	out := ctx.Clone()
	out.FrameSize = f.size
	return []signal.Context{out}, nil
}

// Step buffers the incoming sample and emits a frame once size samples
// have accumulated.
func (f *Framer) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	sample := in[0]
	if sample.IsEmpty() {
		return nil, nil
	}
	for ch := range f.buf {
		f.buf[ch] = append(f.buf[ch], sample.Data[ch][0])
	}
	f.timestamps = append(f.timestamps, sample.Timestamp)
	if f.buf.Size() < f.size {
		return nil, nil
	}

	frame := signal.Frame{
		Data:      f.buf.Slice(0, f.size),
		Timestamp: f.timestamps[0],
	}
	for ch := range f.buf {
		f.buf[ch] = f.buf[ch][:copy(f.buf[ch], f.buf[ch][f.stride:])]
	}
	f.timestamps = f.timestamps[:copy(f.timestamps, f.timestamps[f.stride:])]
	return []signal.Frame{frame}, nil
}

// Finalize flushes the buffered remainder as a shorter frame when
// configured to do so.
func (f *Framer) Finalize(t sigflow.Tick) ([]signal.Frame, error) {
	if !f.finalizePartial || f.buf.Size() == 0 {
		return nil, nil
	}
	frame := signal.Frame{
		Data:      f.buf.Slice(0, f.buf.Size()),
		Timestamp: f.timestamps[0],
	}
	for ch := range f.buf {
		f.buf[ch] = f.buf[ch][:0]
	}
	f.timestamps = f.timestamps[:0]
	return []signal.Frame{frame}, nil
}
