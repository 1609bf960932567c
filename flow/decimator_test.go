package flow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/filter"
	"github.com/sigflow/sigflow/flow"
	"github.com/sigflow/sigflow/signal"
)

// identity keeps decimated values predictable in structural tests.
var identity = filter.FIR{Taps: []float64{1}}

func TestDecimatorWithinFrame(t *testing.T) {
	d := flow.NewDecimator("dec", 2, identity)
	in := streamContext(1, 4)
	in[0].SampleRate = 100
	out, err := d.Setup(in)
	require.NoError(t, err)
	assert.Equal(t, 50.0, out[0].SampleRate)
	assert.Equal(t, 2, out[0].FrameSize)

	frames, err := d.Step(sigflow.Tick{}, []signal.Frame{{
		Data:      signal.Float64{{0, 1, 2, 3}},
		Timestamp: 40 * time.Millisecond,
	}})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{0, 2}}, frames[0].Data)
	assert.Equal(t, 40*time.Millisecond, frames[0].Timestamp)
}

func TestDecimatorAcrossTicks(t *testing.T) {
	d := flow.NewDecimator("phase", 3, identity)
	out, err := d.Setup(streamContext(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, out[0].FrameSize)

	var got []float64
	for i := 0; i < 7; i++ {
		frames, err := d.Step(sigflow.Tick{Index: uint64(i)}, []signal.Frame{sampleFrame(0, float64(i))})
		require.NoError(t, err)
		for _, f := range frames {
			got = append(got, f.Data[0][0])
		}
	}
	// every third sample survives, starting with the first
	assert.Equal(t, []float64{0, 3, 6}, got)
}

func TestDecimatorAntiAlias(t *testing.T) {
	aa, err := flow.AntiAlias(4)
	require.NoError(t, err)
	assert.Len(t, aa.Taps, 33)
	dc := 0.0
	for _, tap := range aa.Taps {
		dc += tap
	}
	assert.InDelta(t, 1.0, dc, 1e-12)

	_, err = flow.AntiAlias(0)
	assert.ErrorIs(t, err, flow.ErrRatio)
}

func TestDecimatorSettlesToDC(t *testing.T) {
	aa, err := flow.AntiAlias(4)
	require.NoError(t, err)
	d := flow.NewDecimator("smooth", 4, aa)
	_, err = d.Setup(streamContext(1, 8))
	require.NoError(t, err)

	var last float64
	for i := 0; i < 20; i++ {
		data := signal.EmptyFloat64(1, 8)
		for j := range data[0] {
			data[0][j] = 1
		}
		frames, err := d.Step(sigflow.Tick{Index: uint64(i)}, []signal.Frame{{Data: data}})
		require.NoError(t, err)
		require.Len(t, frames, 1)
		last = frames[0].Data[0][1]
	}
	assert.InDelta(t, 1.0, last, 1e-9)
}

func TestDecimatorValidation(t *testing.T) {
	tests := []struct {
		name      string
		ratio     int
		antialias filter.Realization
		frameSize int
		err       error
	}{
		{name: "zero ratio", ratio: 0, antialias: identity, frameSize: 4, err: flow.ErrRatio},
		{name: "no antialias", ratio: 2, frameSize: 4, err: flow.ErrNoAntiAlias},
		{name: "indivisible frame", ratio: 2, antialias: identity, frameSize: 5},
		{name: "broken antialias", ratio: 2, antialias: filter.FIR{}, frameSize: 4},
	}
	for _, test := range tests {
		d := flow.NewDecimator(test.name, test.ratio, test.antialias)
		_, err := d.Setup(streamContext(1, test.frameSize))
		require.Error(t, err, test.name)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.name)
		}
	}
}
