package metric_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigflow/sigflow/metric"
)

func TestMeter(t *testing.T) {
	sampleRate := 250.0
	var tests = []struct {
		label           string
		routines        int
		frames          int
		frameSize       int64
		expectedFrames  string
		expectedSamples string
	}{
		{
			label:           "filter-lp",
			routines:        2,
			frames:          10,
			frameSize:       100,
			expectedFrames:  "20",
			expectedSamples: "2000",
		},
		{
			label:           "filter-lp",
			routines:        2,
			frames:          10,
			frameSize:       100,
			expectedFrames:  "40",
			expectedSamples: "4000",
		},
	}
	// function to test meter.
	testFn := func(reset metric.ResetFunc, wg *sync.WaitGroup, frames int, frameSize int64) {
		measure := reset()
		for i := 0; i < frames; i++ {
			measure(frameSize)
		}
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(metric.Meter(c.label, sampleRate), wg, c.frames, c.frameSize)
		}
		// check if no data race.
		wg.Wait()
		values := metric.Get(c.label)
		assert.Equal(t, c.expectedFrames, values[metric.FrameCounter])
		assert.Equal(t, c.expectedSamples, values[metric.SampleCounter])
	}
}

func TestOverrun(t *testing.T) {
	drop := metric.Overrun("async-router")
	for i := 0; i < 5; i++ {
		drop()
	}
	values := metric.Get("async-router")
	assert.Equal(t, "5", values[metric.OverrunCounter])

	all := metric.GetAll()
	assert.Contains(t, all, "async-router")
}
