// Package metric publishes per-node processing counters through expvar:
// processed frames and samples, step latency, accumulated signal duration
// and buffer overruns.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sigflow/sigflow/signal"
)

const nodesLabel = "sigflow.nodes"

const (
	// FrameCounter measures the number of processed frames.
	FrameCounter = "Frames"
	// SampleCounter measures the number of processed samples.
	SampleCounter = "Samples"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter counts the duration of processed signal.
	DurationCounter = "Duration"
	// OverrunCounter counts frames dropped by bounded buffers.
	OverrunCounter = "Overruns"
)

var (
	nodes = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		FrameCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		OverrunCounter,
	}
)

// Get returns metric values for the provided node label.
func Get(label string) map[string]string {
	return getCounters(label)
}

// GetAll returns counters for all measured nodes.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	nodes.Lock()
	defer nodes.Unlock()
	for label := range nodes.m {
		m[label] = getCounters(label)
	}
	return m
}

func getCounters(label string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(label, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns a new Measure closure. The closure postpones metric
// capture until the node is actually stepped.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when a frame is processed.
type MeasureFunc func(samples int64)

// Meter creates a meter closure capturing the node's counters.
func Meter(label string, sampleRate float64) ResetFunc {
	metric := nodes.get(label)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			frameSize     int64
			frameDuration time.Duration
		)
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.frames.Add(1)
			metric.samples.Add(s)
			// recalculate frame duration only when frame size has changed
			if frameSize != s {
				frameSize = s
				frameDuration = signal.DurationOf(sampleRate, s)
			}
			metric.duration.add(frameDuration)
			calledAt = time.Now()
		}
	}
}

// Overrun returns a closure counting dropped frames for the node label.
func Overrun(label string) func() {
	metric := nodes.get(label)
	return func() {
		metric.overruns.Add(1)
	}
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(label string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[label]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(label)
	m.m[label] = metric
	return metric
}

type metric struct {
	key      string
	frames   *expvar.Int
	samples  *expvar.Int
	overruns *expvar.Int
	latency  *duration
	duration *duration
}

func newMetric(label string) metric {
	m := metric{
		key:      label,
		frames:   expvar.NewInt(key(label, FrameCounter)),
		samples:  expvar.NewInt(key(label, SampleCounter)),
		overruns: expvar.NewInt(key(label, OverrunCounter)),
		latency:  &duration{},
		duration: &duration{},
	}
	expvar.Publish(key(label, LatencyCounter), m.latency)
	expvar.Publish(key(label, DurationCounter), m.duration)
	return m
}

func key(label, counter string) string {
	return fmt.Sprintf("%s.%s.%s", nodesLabel, label, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%v", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
