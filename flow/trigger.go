package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// Condition decides whether an instant of the stream fires a trigger. It
// receives one value per channel.
type Condition func(values []float64) bool

// Rising fires when the value on the channel crosses above the threshold.
func Rising(channel int, threshold float64) Condition {
	return func(values []float64) bool {
		return values[channel] > threshold
	}
}

// Trigger cuts windows around instants where the condition becomes true.
// A window holds pre samples before the instant, the instant itself and
// post samples after it. The condition is edge sensitive: it must return
// false again before the next window can fire. Windows may overlap; each
// completes independently.
//
// Completed windows leave at most one per tick, so the output is marked
// sporadic and the trigger keeps running on empty ticks until its backlog
// is drained.
type Trigger struct {
	label     string
	pre, post int
	condition Condition

	sampleRate float64
	buf        signal.Float64
	timestamps []time.Duration
	last       bool
	pending    []int
	queue      []signal.Frame
}

// NewTrigger creates a trigger with the given capture window.
func NewTrigger(label string, pre, post int, condition Condition) *Trigger {
	return &Trigger{
		label:     label,
		pre:       pre,
		post:      post,
		condition: condition,
	}
}

// Label returns the node name.
func (tr *Trigger) Label() string { return tr.label }

// Inputs returns the input port count.
func (tr *Trigger) Inputs() int { return 1 }

// Outputs returns the output port count.
func (tr *Trigger) Outputs() int { return 1 }

// SelfTimed keeps the trigger stepping while completed windows remain.
func (tr *Trigger) SelfTimed() bool { return len(tr.queue) > 0 }

// Setup validates the window and publishes the sporadic window context.
func (tr *Trigger) Setup(in []signal.Context) ([]signal.Context, error) {
	if tr.condition == nil {
		return nil, errors.New("no condition")
	}
	if tr.pre < 0 || tr.post < 0 {
		return nil, fmt.Errorf("window %d..%d, want non-negative bounds", tr.pre, tr.post)
	}
	ctx := in[0]
	tr.sampleRate = ctx.SampleRate
	tr.buf = make(signal.Float64, ctx.Channels)
	tr.timestamps = tr.timestamps[:0]
	tr.last = false
	tr.pending = tr.pending[:0]
	tr.queue = tr.queue[:0]

	out := ctx.Clone()
	out.FrameSize = tr.pre + 1 + tr.post
	out.Sporadic = true
	return []signal.Context{out}, nil
}

// Step ingests fresh samples and releases one completed window per tick.
func (tr *Trigger) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	if !in[0].IsEmpty() {
		values := make([]float64, len(tr.buf))
		for i := 0; i < in[0].Data.Size(); i++ {
			for ch := range values {
				values[ch] = in[0].Data[ch][i]
			}
			ts := in[0].Timestamp + signal.DurationOf(tr.sampleRate, int64(i))
			tr.ingest(values, ts)
		}
	}
	if len(tr.queue) == 0 {
		return nil, nil
	}
	frame := tr.queue[0]
	tr.queue = tr.queue[:copy(tr.queue, tr.queue[1:])]
	return []signal.Frame{frame}, nil
}

// ingest pushes one instant through the rolling buffer, advances pending
// windows and fires the condition edge.
func (tr *Trigger) ingest(values []float64, ts time.Duration) {
	for ch := range tr.buf {
		tr.buf[ch] = append(tr.buf[ch], values[ch])
	}
	tr.timestamps = append(tr.timestamps, ts)
	if window := tr.pre + 1 + tr.post; len(tr.timestamps) > window {
		for ch := range tr.buf {
			tr.buf[ch] = tr.buf[ch][:copy(tr.buf[ch], tr.buf[ch][1:])]
		}
		tr.timestamps = tr.timestamps[:copy(tr.timestamps, tr.timestamps[1:])]
	}

	kept := tr.pending[:0]
	for _, remaining := range tr.pending {
		if remaining--; remaining == 0 {
			tr.complete()
			continue
		}
		kept = append(kept, remaining)
	}
	tr.pending = kept

	fires := tr.condition(values)
	if fires && !tr.last {
		if tr.post == 0 {
			tr.complete()
		} else {
			tr.pending = append(tr.pending, tr.post)
		}
	}
	tr.last = fires
}

// complete copies the buffered window into the outgoing queue.
func (tr *Trigger) complete() {
	tr.queue = append(tr.queue, signal.Frame{
		Data:      tr.buf.Slice(0, len(tr.timestamps)),
		Timestamp: tr.timestamps[0],
	})
}
