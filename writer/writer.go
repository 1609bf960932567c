// Package writer provides the sink nodes that persist frame streams. The
// Writer node owns queuing, degradation and flush timing; an Encoder adds
// only the serialization, so a new format is a new Encoder and nothing
// else.
package writer

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/log"
	"github.com/sigflow/sigflow/metric"
	"github.com/sigflow/sigflow/signal"
)

// Encoder serializes one stream to its destination. Begin receives the
// stream context before the first frame, Close must make the output
// durable. Encoders run on the writer's goroutine, never the scheduler's.
type Encoder interface {
	Begin(ctx signal.Context) error
	Encode(f signal.Frame) error
	Close() error
}

// Writer drives an encoder from its own goroutine. Frames arrive through
// a bounded queue, so a slow destination never stalls the scheduler: a
// full queue drops the oldest frame and counts an overrun. The first
// encoding fault degrades the sink, which then discards frames; the
// fault surfaces as a warning when the run flushes, not as a run error.
type Writer struct {
	label    string
	enc      Encoder
	capacity int
	overrun  func()
	log      *logrus.Logger

	ctx   signal.Context
	queue chan signal.Frame
	done  chan struct{}

	mu       sync.Mutex
	degraded error
}

// WriterOption configures a writer.
type WriterOption func(*Writer)

// QueueCapacity sets the number of frames buffered towards the encoder.
// The default is 64.
func QueueCapacity(frames int) WriterOption {
	return func(w *Writer) {
		w.capacity = frames
	}
}

// New creates a writer around an encoder.
func New(label string, enc Encoder, options ...WriterOption) *Writer {
	w := &Writer{
		label:    label,
		enc:      enc,
		capacity: 64,
		overrun:  metric.Overrun(label),
		log:      log.GetLogger(),
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Label returns the node name.
func (w *Writer) Label() string { return w.label }

// Inputs returns the input port count.
func (w *Writer) Inputs() int { return 1 }

// Outputs returns the output port count.
func (w *Writer) Outputs() int { return 0 }

// Setup keeps the stream context for the encoder.
func (w *Writer) Setup(in []signal.Context) ([]signal.Context, error) {
	w.ctx = in[0]
	return nil, nil
}

// Start begins the encoding and spawns the writing goroutine.
func (w *Writer) Start() error {
	if err := w.enc.Begin(w.ctx); err != nil {
		return err
	}
	if w.capacity < 1 {
		w.capacity = 1
	}
	w.queue = make(chan signal.Frame, w.capacity)
	w.done = make(chan struct{})
	go w.work()
	return nil
}

// work encodes queued frames until the queue closes, then closes the
// encoder.
func (w *Writer) work() {
	defer close(w.done)
	for f := range w.queue {
		if w.Degraded() != nil {
			continue
		}
		if err := w.enc.Encode(f); err != nil {
			w.degrade(err)
		}
	}
	if err := w.enc.Close(); err != nil {
		w.degrade(err)
	}
}

// Step queues the frame for encoding. It never blocks.
func (w *Writer) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	f := in[0]
	if f.IsEmpty() || w.Degraded() != nil {
		return nil, nil
	}
	select {
	case w.queue <- f:
	default:
		select {
		case <-w.queue:
			w.overrun()
			w.log.WithField("node", w.label).Warn("write queue overrun, oldest frame dropped")
		default:
		}
		select {
		case w.queue <- f:
		default:
		}
	}
	return nil, nil
}

// Flush closes the queue, waits for the encoder to finish and reports
// whether the sink degraded.
func (w *Writer) Flush() error {
	close(w.queue)
	<-w.done
	return w.Degraded()
}

// Degraded returns the fault that degraded the sink, or nil.
func (w *Writer) Degraded() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.degraded
}

// degrade records the first fault.
func (w *Writer) degrade(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.degraded == nil {
		w.degraded = err
		w.log.WithFields(logrus.Fields{"node": w.label, "error": err}).Warn("sink degraded, frames are discarded")
	}
}
