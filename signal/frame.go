package signal

import (
	"errors"
	"fmt"
	"time"
)

// Frame is a timestamped block of samples produced on one tick. Data is
// shaped channels × samples. Timestamp is the offset of the first sample
// from the stream origin. A frame is immutable once published: downstream
// consumers only ever read it.
type Frame struct {
	Data      Float64
	Timestamp time.Duration
	Tick      uint64
}

// IsEmpty reports whether the frame carries no samples. The zero value is
// empty and stands for "nothing on this port this tick".
func (f Frame) IsEmpty() bool {
	return f.Data.Size() == 0
}

// Context describes the stream flowing over an edge. It is established
// during setup, before the first tick, and stays immutable during the run.
// Descriptive state lives here; per-tick data lives in frames. The two are
// never conflated.
type Context struct {
	// SampleRate is the number of samples per second per channel.
	SampleRate float64
	// FrameSize is the number of samples per channel in one frame.
	FrameSize int
	// Channels is the number of channels.
	Channels int
	// Labels optionally names each channel. When set, its length equals
	// Channels.
	Labels []string
	// Unit is the physical unit of sample values, e.g. "uV".
	Unit string
	// Origin is the wall-clock moment frame timestamps are relative to.
	Origin time.Time
	// Sporadic marks streams whose frames arrive irregularly, such as
	// trigger windows or asynchronously routed data. Rate and frame size
	// are nominal for such streams.
	Sporadic bool
}

// FrameRate returns the number of frames per second.
func (c Context) FrameRate() float64 {
	if c.FrameSize == 0 {
		return 0
	}
	return c.SampleRate / float64(c.FrameSize)
}

// FramePeriod returns the duration covered by one frame.
func (c Context) FramePeriod() time.Duration {
	return DurationOf(c.SampleRate, int64(c.FrameSize))
}

// Clone returns a logically independent copy of the context. Consumers
// receive clones so that transforming one edge's context never leaks into
// another.
func (c Context) Clone() Context {
	if c.Labels != nil {
		labels := make([]string, len(c.Labels))
		copy(labels, c.Labels)
		c.Labels = labels
	}
	return c
}

// ChannelName returns the label of channel i, falling back to a generated
// "ChNN" name.
func (c Context) ChannelName(i int) string {
	if i < len(c.Labels) && c.Labels[i] != "" {
		return c.Labels[i]
	}
	return fmt.Sprintf("Ch%02d", i+1)
}

// Validate reports whether the context is complete enough to process data.
func (c Context) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate %v: %w", c.SampleRate, ErrContext)
	}
	if c.FrameSize <= 0 {
		return fmt.Errorf("frame size %d: %w", c.FrameSize, ErrContext)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channel count %d: %w", c.Channels, ErrContext)
	}
	if c.Labels != nil && len(c.Labels) != c.Channels {
		return fmt.Errorf("%d labels for %d channels: %w", len(c.Labels), c.Channels, ErrContext)
	}
	return nil
}

// ErrContext is returned when a stream context misses required metadata or
// carries inconsistent values.
var ErrContext = errors.New("incomplete stream context")
