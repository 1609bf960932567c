package flow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/flow"
	"github.com/sigflow/sigflow/signal"
)

func holdStep(t *testing.T, h *flow.Hold, i int, fresh []signal.Frame) []signal.Frame {
	t.Helper()
	frames, err := h.Step(sigflow.Tick{
		Index: uint64(i),
		Rate:  10,
		Time:  time.Duration(i) * 100 * time.Millisecond,
	}, fresh)
	require.NoError(t, err)
	return frames
}

func TestHoldLast(t *testing.T) {
	h := flow.NewHold("hold", 5, flow.HoldLast)
	require.NoError(t, h.Pace(10))
	in := streamContext(2, 1)
	in[0].Sporadic = true
	out, err := h.Setup(in)
	require.NoError(t, err)
	assert.Equal(t, 5.0, out[0].SampleRate)
	assert.False(t, out[0].Sporadic)
	assert.True(t, h.SelfTimed())

	empty := []signal.Frame{{}}
	// silent until the first sample arrives
	assert.Nil(t, holdStep(t, h, 0, empty))

	frames := holdStep(t, h, 1, []signal.Frame{sampleFrame(0, 3, 30)})
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{3}, {30}}, frames[0].Data)
	assert.Equal(t, 100*time.Millisecond, frames[0].Timestamp)

	// off grid
	assert.Nil(t, holdStep(t, h, 2, empty))

	// grid tick without fresh input repeats the held sample
	frames = holdStep(t, h, 3, empty)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{3}, {30}}, frames[0].Data)
	assert.Equal(t, 300*time.Millisecond, frames[0].Timestamp)

	// stored off grid, emitted on the next grid tick
	assert.Nil(t, holdStep(t, h, 4, []signal.Frame{sampleFrame(0, 7, 70)}))
	frames = holdStep(t, h, 5, empty)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{7}, {70}}, frames[0].Data)
}

func TestHoldZeroFill(t *testing.T) {
	h := flow.NewHold("zero", 5, flow.ZeroFill)
	require.NoError(t, h.Pace(10))
	_, err := h.Setup(streamContext(1, 1))
	require.NoError(t, err)

	empty := []signal.Frame{{}}
	frames := holdStep(t, h, 1, []signal.Frame{sampleFrame(0, 3)})
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{3}}, frames[0].Data)

	// the stored sample was already emitted, the gap is filled with zeros
	frames = holdStep(t, h, 3, empty)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{0}}, frames[0].Data)

	assert.Nil(t, holdStep(t, h, 4, []signal.Frame{sampleFrame(0, 7)}))
	frames = holdStep(t, h, 5, empty)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{7}}, frames[0].Data)

	frames = holdStep(t, h, 7, empty)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{0}}, frames[0].Data)
}

func TestHoldPace(t *testing.T) {
	tests := []struct {
		rate     float64
		tickRate float64
		ok       bool
	}{
		{rate: 5, tickRate: 10, ok: true},
		{rate: 10, tickRate: 10, ok: true},
		{rate: 3, tickRate: 10},
		{rate: 20, tickRate: 10},
		{rate: 0, tickRate: 10},
		{rate: -5, tickRate: 10},
	}
	for _, test := range tests {
		h := flow.NewHold("pace", test.rate, flow.HoldLast)
		err := h.Pace(test.tickRate)
		if test.ok {
			assert.NoError(t, err, "rate %v at %v", test.rate, test.tickRate)
		} else {
			assert.Error(t, err, "rate %v at %v", test.rate, test.tickRate)
		}
	}
}

func TestHoldSetup(t *testing.T) {
	// setup requires an established pace
	h := flow.NewHold("unpaced", 5, flow.HoldLast)
	_, err := h.Setup(streamContext(1, 1))
	assert.Error(t, err)

	// and a sample stream
	h = flow.NewHold("framed", 5, flow.HoldLast)
	require.NoError(t, h.Pace(10))
	_, err = h.Setup(streamContext(1, 4))
	assert.Error(t, err)
}
