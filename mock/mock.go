// Package mock provides configurable nodes for testing graphs: a source
// with a frame limit, a transform with fault injection and a recording
// sink. Exported counters are safe to read once the run has delivered
// its terminal error.
package mock

import (
	"errors"
	"io"
	"time"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// ErrFault is the error injected by mocks configured to fail.
var ErrFault = errors.New("injected fault")

// Source emits frames of a constant value until the limit is reached,
// then reports end of stream.
type Source struct {
	Name       string
	SampleRate float64
	FrameSize  int
	Channels   int
	Value      float64
	Limit      int // frames until end of stream, 0 means endless
	FailAt     int // frame to fail on, 1-based, 0 disables

	Steps int
	pos   int64
}

// Label returns the node name.
func (s *Source) Label() string { return s.Name }

// Inputs returns the input port count.
func (s *Source) Inputs() int { return 0 }

// Outputs returns the output port count.
func (s *Source) Outputs() int { return 1 }

// Setup publishes the configured stream context.
func (s *Source) Setup([]signal.Context) ([]signal.Context, error) {
	ctx := signal.Context{
		SampleRate: s.SampleRate,
		FrameSize:  s.FrameSize,
		Channels:   s.Channels,
		Origin:     time.Now(),
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	s.Steps = 0
	s.pos = 0
	return []signal.Context{ctx}, nil
}

// Step emits the next frame.
func (s *Source) Step(t sigflow.Tick, _ []signal.Frame) ([]signal.Frame, error) {
	if s.Limit > 0 && s.Steps >= s.Limit {
		return nil, io.EOF
	}
	s.Steps++
	if s.FailAt > 0 && s.Steps == s.FailAt {
		return nil, ErrFault
	}
	data := signal.EmptyFloat64(s.Channels, s.FrameSize)
	for ch := range data {
		for i := range data[ch] {
			data[ch][i] = s.Value
		}
	}
	f := signal.Frame{
		Data:      data,
		Timestamp: signal.DurationOf(s.SampleRate, s.pos),
	}
	s.pos += int64(s.FrameSize)
	return []signal.Frame{f}, nil
}

// Transform scales every sample and counts its activity. A non-nil Tail
// is emitted once when the run drains.
type Transform struct {
	Name   string
	Scale  float64 // 0 behaves as 1
	FailAt int     // step to fail on, 1-based, 0 disables
	Tail   signal.Float64

	Steps     int
	Samples   int64
	Finalized int
	Flushed   int

	tailSent bool
}

// Label returns the node name.
func (tr *Transform) Label() string { return tr.Name }

// Inputs returns the input port count.
func (tr *Transform) Inputs() int { return 1 }

// Outputs returns the output port count.
func (tr *Transform) Outputs() int { return 1 }

// Setup passes the context through.
func (tr *Transform) Setup(in []signal.Context) ([]signal.Context, error) {
	tr.Steps = 0
	tr.Samples = 0
	tr.tailSent = false
	return []signal.Context{in[0].Clone()}, nil
}

// Step emits the scaled frame.
func (tr *Transform) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	tr.Steps++
	if tr.FailAt > 0 && tr.Steps == tr.FailAt {
		return nil, ErrFault
	}
	f := in[0]
	if f.IsEmpty() {
		return nil, nil
	}
	scale := tr.Scale
	if scale == 0 {
		scale = 1
	}
	out := signal.EmptyFloat64(f.Data.NumChannels(), f.Data.Size())
	for ch := range f.Data {
		for i, v := range f.Data[ch] {
			out[ch][i] = v * scale
		}
	}
	tr.Samples += int64(f.Data.Size())
	return []signal.Frame{{Data: out, Timestamp: f.Timestamp}}, nil
}

// Finalize emits the configured tail once.
func (tr *Transform) Finalize(t sigflow.Tick) ([]signal.Frame, error) {
	tr.Finalized++
	if tr.Tail == nil || tr.tailSent {
		return nil, nil
	}
	tr.tailSent = true
	return []signal.Frame{{Data: tr.Tail, Timestamp: t.Time}}, nil
}

// Flush counts teardowns.
func (tr *Transform) Flush() error {
	tr.Flushed++
	return nil
}

// Sink records every frame it receives.
type Sink struct {
	Name      string
	FailAt    int // frame to fail on, 1-based, 0 disables
	FailStart error
	FailFlush error

	Ctx     signal.Context
	Frames  []signal.Frame
	Ticks   []uint64
	Started int
	Flushed int
}

// Label returns the node name.
func (sk *Sink) Label() string { return sk.Name }

// Inputs returns the input port count.
func (sk *Sink) Inputs() int { return 1 }

// Outputs returns the output port count.
func (sk *Sink) Outputs() int { return 0 }

// Setup keeps the context for assertions.
func (sk *Sink) Setup(in []signal.Context) ([]signal.Context, error) {
	sk.Ctx = in[0]
	sk.Frames = nil
	sk.Ticks = nil
	return nil, nil
}

// Start counts startups.
func (sk *Sink) Start() error {
	sk.Started++
	return sk.FailStart
}

// Step records the frame and the tick it arrived on.
func (sk *Sink) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	f := in[0]
	if f.IsEmpty() {
		return nil, nil
	}
	if sk.FailAt > 0 && len(sk.Frames)+1 == sk.FailAt {
		return nil, ErrFault
	}
	sk.Frames = append(sk.Frames, f)
	sk.Ticks = append(sk.Ticks, t.Index)
	return nil, nil
}

// Flush counts teardowns.
func (sk *Sink) Flush() error {
	sk.Flushed++
	return sk.FailFlush
}

// Values flattens the first channel of every recorded frame.
func (sk *Sink) Values() []float64 {
	var values []float64
	for _, f := range sk.Frames {
		values = append(values, f.Data[0]...)
	}
	return values
}
