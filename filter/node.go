package filter

import (
	"fmt"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// Node applies a filter realization to every channel of a frame stream,
// carrying per-channel delay lines across ticks. Coefficients are
// immutable after construction.
type Node struct {
	label       string
	realization Realization
	channels    []channel
}

// New creates a filter node around a realization. The realization is
// checked during setup.
func New(label string, r Realization) *Node {
	return &Node{
		label:       label,
		realization: r,
	}
}

// Label returns the node name.
func (n *Node) Label() string { return n.label }

// Inputs returns the input port count.
func (n *Node) Inputs() int { return 1 }

// Outputs returns the output port count.
func (n *Node) Outputs() int { return 1 }

// Setup validates the realization and allocates one delay line per
// channel. The stream context passes through unchanged: rate, frame size
// and channel count are identical on both sides.
func (n *Node) Setup(in []signal.Context) ([]signal.Context, error) {
	if n.realization == nil {
		return nil, fmt.Errorf("no realization")
	}
	if err := n.realization.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", describe(n.realization), err)
	}
	ctx := in[0]
	n.channels = make([]channel, ctx.Channels)
	for i := range n.channels {
		n.channels[i] = n.realization.newChannel()
	}
	return []signal.Context{ctx}, nil
}

// Step filters one frame, producing an equal-length frame with the same
// timestamp.
func (n *Node) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	f := in[0]
	if f.IsEmpty() {
		return nil, nil
	}
	if len(f.Data) != len(n.channels) {
		return nil, fmt.Errorf("frame has %d channels, filter has %d", len(f.Data), len(n.channels))
	}
	out := signal.EmptyFloat64(f.Data.NumChannels(), f.Data.Size())
	for i, ch := range n.channels {
		ch.process(f.Data[i], out[i])
	}
	return []signal.Frame{{
		Data:      out,
		Timestamp: f.Timestamp,
	}}, nil
}
