// Package flow provides the nodes that reshape streams between sources
// and sinks: routing, framing, decimation, rate bridging and condition
// windowing.
package flow

import (
	"errors"
	"fmt"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/log"
	"github.com/sigflow/sigflow/metric"
	"github.com/sigflow/sigflow/signal"
)

// All selects every channel in order.
var All []int

// ErrPush is returned when frames are pushed into a router that does not
// buffer them.
var ErrPush = errors.New("push into a synchronous router")

// Propagation selects how a router forwards frames. It is a sealed
// variant: synchronous and asynchronous forwarding are distinct
// implementations with no shared mode flag, fixed at construction.
type Propagation interface {
	newPropagator(label string) propagator
	validate() error
}

// propagator owns the frames between router input and output.
type propagator interface {
	push(f signal.Frame)
	pop() (signal.Frame, bool)
	pending() bool
}

// Sync forwards on the tick the input arrives: no buffering, no added
// latency, and nothing is emitted on ticks without input.
func Sync() Propagation {
	return synchronous{}
}

type synchronous struct{}

func (synchronous) validate() error { return nil }

func (synchronous) newPropagator(string) propagator { return &syncPropagator{} }

type syncPropagator struct {
	frame signal.Frame
	held  bool
}

func (p *syncPropagator) push(f signal.Frame) {
	p.frame = f
	p.held = true
}

func (p *syncPropagator) pop() (signal.Frame, bool) {
	if !p.held {
		return signal.Frame{}, false
	}
	f := p.frame
	p.frame = signal.Frame{}
	p.held = false
	return f, true
}

func (p *syncPropagator) pending() bool { return false }

// Async decouples producer and consumer through a bounded FIFO ring: one
// frame is emitted per tick, overflow drops the oldest frame and counts
// an overrun. Order is never disturbed.
func Async(capacity int) Propagation {
	return asynchronous{capacity: capacity}
}

type asynchronous struct {
	capacity int
}

func (a asynchronous) validate() error {
	if a.capacity < 1 {
		return fmt.Errorf("buffer capacity %d, want at least 1", a.capacity)
	}
	return nil
}

func (a asynchronous) newPropagator(label string) propagator {
	l := log.GetLogger()
	overrun := metric.Overrun(label)
	ring := signal.NewRing(a.capacity, func() {
		overrun()
		l.WithField("node", label).Warn("buffer overrun, oldest frame dropped")
	})
	return &asyncPropagator{ring: ring}
}

type asyncPropagator struct {
	ring *signal.Ring
}

func (p *asyncPropagator) push(f signal.Frame) { p.ring.Push(f) }

func (p *asyncPropagator) pop() (signal.Frame, bool) { return p.ring.Pop() }

func (p *asyncPropagator) pending() bool { return p.ring.Len() > 0 }

// Router directs a selection of input channels onto output channel
// positions. InputChannels lists the channels to take, OutputChannels the
// positions to place them at, pairwise; nil means all, in order. The
// propagation mode is fixed at construction.
type Router struct {
	label      string
	mode       Propagation
	inputSel   []int
	outputSel  []int
	p          propagator
	channels   int
	asynchrony bool
}

// NewRouter creates a router. Channel lists are validated against the
// connected stream during setup.
func NewRouter(label string, mode Propagation, inputChannels, outputChannels []int) *Router {
	return &Router{
		label:     label,
		mode:      mode,
		inputSel:  inputChannels,
		outputSel: outputChannels,
	}
}

// Label returns the node name.
func (r *Router) Label() string { return r.label }

// Inputs returns the input port count.
func (r *Router) Inputs() int { return 1 }

// Outputs returns the output port count.
func (r *Router) Outputs() int { return 1 }

// Setup resolves the channel map and builds the propagator.
func (r *Router) Setup(in []signal.Context) ([]signal.Context, error) {
	if r.mode == nil {
		return nil, fmt.Errorf("no propagation mode")
	}
	if err := r.mode.validate(); err != nil {
		return nil, err
	}
	ctx := in[0]
	if r.inputSel == nil {
		r.inputSel = sequence(ctx.Channels)
	}
	if r.outputSel == nil {
		r.outputSel = sequence(len(r.inputSel))
	}
	if len(r.inputSel) != len(r.outputSel) {
		return nil, fmt.Errorf("%d input channels for %d output positions", len(r.inputSel), len(r.outputSel))
	}
	seen := make(map[int]bool, len(r.outputSel))
	r.channels = 0
	for i := range r.inputSel {
		if r.inputSel[i] < 0 || r.inputSel[i] >= ctx.Channels {
			return nil, fmt.Errorf("input channel %d outside 0..%d", r.inputSel[i], ctx.Channels-1)
		}
		if r.outputSel[i] < 0 {
			return nil, fmt.Errorf("negative output position %d", r.outputSel[i])
		}
		if seen[r.outputSel[i]] {
			return nil, fmt.Errorf("output position %d assigned twice", r.outputSel[i])
		}
		seen[r.outputSel[i]] = true
		if r.outputSel[i] >= r.channels {
			r.channels = r.outputSel[i] + 1
		}
	}

	_, r.asynchrony = r.mode.(asynchronous)
	r.p = r.mode.newPropagator(r.label)

	out := ctx.Clone()
	out.Channels = r.channels
	out.Sporadic = ctx.Sporadic || r.asynchrony
	if ctx.Labels != nil {
		out.Labels = make([]string, r.channels)
		for i, ch := range r.inputSel {
			out.Labels[r.outputSel[i]] = ctx.Labels[ch]
		}
	}
	return []signal.Context{out}, nil
}

// Step routes the fresh frame, if any, into the propagator and emits
// whatever the propagator releases this tick.
func (r *Router) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	if !in[0].IsEmpty() {
		r.p.push(r.route(in[0]))
	}
	f, ok := r.p.pop()
	if !ok {
		return nil, nil
	}
	return []signal.Frame{f}, nil
}

// SelfTimed keeps the router stepping while buffered frames remain.
func (r *Router) SelfTimed() bool {
	return r.p != nil && r.p.pending()
}

// Push hands a frame to an asynchronous router from outside the tick
// loop. It is safe for concurrent use. The frame is routed immediately
// and buffered until the router's next tick.
func (r *Router) Push(f signal.Frame) error {
	if r.p == nil {
		return fmt.Errorf("router %s not set up", r.label)
	}
	if !r.asynchrony {
		return ErrPush
	}
	r.p.push(r.route(f))
	return nil
}

// route lays the selected input channels out on the output positions.
// Unassigned positions stay zero.
func (r *Router) route(f signal.Frame) signal.Frame {
	data := signal.EmptyFloat64(r.channels, f.Data.Size())
	for i, ch := range r.inputSel {
		copy(data[r.outputSel[i]], f.Data[ch])
	}
	return signal.Frame{
		Data:      data,
		Timestamp: f.Timestamp,
	}
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
