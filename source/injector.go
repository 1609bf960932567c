package source

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/log"
	"github.com/sigflow/sigflow/metric"
	"github.com/sigflow/sigflow/signal"
)

// Injector bridges an externally clocked producer, such as an acquisition
// device on its own thread, into a graph. The producer pushes frames from
// any goroutine; the scheduler pops them at its own cadence. The bounded
// queue drops the oldest frame on overflow and counts an overrun, so a
// stalled graph never blocks the device.
//
// On ticks without data the injector reports "nothing yet", which the
// scheduler distinguishes from a device fault. After Close, the remaining
// frames drain and the injector reports end of stream.
type Injector struct {
	label string
	ctx   signal.Context
	ring  *signal.Ring

	mu     sync.Mutex
	closed bool
}

// NewInjector creates an injector for the described stream, buffering at
// most capacity frames.
func NewInjector(label string, ctx signal.Context, capacity int) *Injector {
	return &Injector{
		label: label,
		ctx:   ctx,
		ring:  newSourceRing(label, capacity),
	}
}

// newSourceRing builds the bounded queue shared by externally fed
// sources, wired to the overrun counter.
func newSourceRing(label string, capacity int) *signal.Ring {
	l := log.GetLogger()
	overrun := metric.Overrun(label)
	return signal.NewRing(capacity, func() {
		overrun()
		l.WithFields(logrus.Fields{"node": label}).Warn("queue overrun, oldest frame dropped")
	})
}

// Label returns the node name.
func (inj *Injector) Label() string { return inj.label }

// Inputs returns the input port count.
func (inj *Injector) Inputs() int { return 0 }

// Outputs returns the output port count.
func (inj *Injector) Outputs() int { return 1 }

// Setup publishes the stream context provided at construction.
func (inj *Injector) Setup([]signal.Context) ([]signal.Context, error) {
	if err := inj.ctx.Validate(); err != nil {
		return nil, err
	}
	return []signal.Context{inj.ctx.Clone()}, nil
}

// Push hands a frame to the graph. It is safe for concurrent use and
// never blocks. Pushing into a closed injector is an error.
func (inj *Injector) Push(f signal.Frame) error {
	inj.mu.Lock()
	closed := inj.closed
	inj.mu.Unlock()
	if closed {
		return fmt.Errorf("injector %s closed", inj.label)
	}
	inj.ring.Push(f)
	return nil
}

// Close marks the end of the stream. Buffered frames still drain; after
// that the injector reports end of stream to the scheduler.
func (inj *Injector) Close() {
	inj.mu.Lock()
	inj.closed = true
	inj.mu.Unlock()
}

// Step pops the oldest buffered frame.
func (inj *Injector) Step(t sigflow.Tick, _ []signal.Frame) ([]signal.Frame, error) {
	if f, ok := inj.ring.Pop(); ok {
		return []signal.Frame{f}, nil
	}
	inj.mu.Lock()
	closed := inj.closed
	inj.mu.Unlock()
	if closed {
		return nil, io.EOF
	}
	return nil, sigflow.ErrNoData
}
