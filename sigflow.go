package sigflow

import (
	"time"

	"github.com/sigflow/sigflow/signal"
)

// Tick carries the position of the scheduler on its timeline. Rate is the
// base tick rate in ticks per second, Time is the offset of the tick start
// from the run origin.
type Tick struct {
	Index uint64
	Rate  float64
	Time  time.Duration
}

// Node is the unit of computation in a graph. Ports are indexed; sources
// declare zero inputs, sinks zero outputs.
//
// Setup receives one context per input port, validates them and returns
// one context per output port. It runs once, before the first tick, and
// must fail on anything that would make processing unsafe: missing
// metadata, incompatible rates, malformed parameters.
//
// Step receives one frame per input port; an empty frame means nothing
// arrived on that port this tick. It returns one frame per output port,
// empty for ports with nothing to emit, or nil for no output at all.
// Returned frames are published to all consumers and must not be mutated
// afterwards.
type Node interface {
	Label() string
	Inputs() int
	Outputs() int
	Setup(in []signal.Context) ([]signal.Context, error)
	Step(t Tick, in []signal.Frame) ([]signal.Frame, error)
}

// Starter is implemented by nodes that acquire resources before the first
// tick, after the graph is validated. Writers open their files here.
type Starter interface {
	Start() error
}

// Finalizer is implemented by nodes that emit tail data when the run
// drains. The returned frames propagate through one final tick.
type Finalizer interface {
	Finalize(t Tick) ([]signal.Frame, error)
}

// Flusher is implemented by nodes that release resources when the run is
// done. Flush errors from sink nodes degrade the sink instead of failing
// the run.
type Flusher interface {
	Flush() error
}

// SelfTimed is implemented by nodes that must be stepped even on ticks
// without fresh input, such as an asynchronous router draining its
// backlog. The scheduler asks before every tick.
type SelfTimed interface {
	SelfTimed() bool
}

// Pacer is implemented by nodes that need the base tick rate before
// setup. Returning an error rejects the configuration.
type Pacer interface {
	Pace(tickRate float64) error
}
