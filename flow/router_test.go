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

func streamContext(channels, frameSize int) []signal.Context {
	return []signal.Context{{
		SampleRate: 250,
		FrameSize:  frameSize,
		Channels:   channels,
	}}
}

func sampleFrame(ts time.Duration, values ...float64) signal.Frame {
	data := make(signal.Float64, len(values))
	for ch := range values {
		data[ch] = []float64{values[ch]}
	}
	return signal.Frame{Data: data, Timestamp: ts}
}

func TestRouterSync(t *testing.T) {
	r := flow.NewRouter("pick", flow.Sync(), []int{2, 0}, []int{0, 1})
	in := streamContext(3, 1)
	in[0].Labels = []string{"Fp1", "Fp2", "Cz"}
	out, err := r.Setup(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Channels)
	assert.Equal(t, []string{"Cz", "Fp1"}, out[0].Labels)
	assert.False(t, out[0].Sporadic)

	frames, err := r.Step(sigflow.Tick{}, []signal.Frame{sampleFrame(0, 1, 2, 3)})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{3}, {1}}, frames[0].Data)

	// nothing buffered, nothing emitted
	frames, err = r.Step(sigflow.Tick{Index: 1}, []signal.Frame{{}})
	require.NoError(t, err)
	assert.Nil(t, frames)
	assert.False(t, r.SelfTimed())
}

func TestRouterSpread(t *testing.T) {
	r := flow.NewRouter("spread", flow.Sync(), []int{0, 1}, []int{0, 3})
	out, err := r.Setup(streamContext(2, 1))
	require.NoError(t, err)
	assert.Equal(t, 4, out[0].Channels)

	frames, err := r.Step(sigflow.Tick{}, []signal.Frame{sampleFrame(0, 5, 6)})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{5}, {0}, {0}, {6}}, frames[0].Data)
}

func TestRouterAsyncBurst(t *testing.T) {
	r := flow.NewRouter("burst", flow.Async(10), nil, nil)
	out, err := r.Setup(streamContext(1, 1))
	require.NoError(t, err)
	assert.True(t, out[0].Sporadic)

	for i := 0; i < 15; i++ {
		require.NoError(t, r.Push(sampleFrame(time.Duration(i)*time.Millisecond, float64(i))))
	}

	var got []float64
	for r.SelfTimed() {
		frames, err := r.Step(sigflow.Tick{Index: uint64(len(got))}, []signal.Frame{{}})
		require.NoError(t, err)
		require.Len(t, frames, 1)
		got = append(got, frames[0].Data[0][0])
	}
	// the five oldest frames were dropped, the rest kept their order
	assert.Equal(t, []float64{5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, got)
}

func TestRouterAsyncPassthrough(t *testing.T) {
	r := flow.NewRouter("relaxed", flow.Async(4), nil, nil)
	_, err := r.Setup(streamContext(1, 1))
	require.NoError(t, err)

	// with no backlog a fresh frame leaves on its own tick
	frames, err := r.Step(sigflow.Tick{}, []signal.Frame{sampleFrame(0, 42)})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, signal.Float64{{42}}, frames[0].Data)
	assert.False(t, r.SelfTimed())
}

func TestRouterPush(t *testing.T) {
	r := flow.NewRouter("strict", flow.Sync(), nil, nil)
	assert.Error(t, r.Push(sampleFrame(0, 1)))

	_, err := r.Setup(streamContext(1, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Push(sampleFrame(0, 1)), flow.ErrPush)
}

func TestRouterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mode    flow.Propagation
		inputs  []int
		outputs []int
	}{
		{name: "no mode"},
		{name: "bad capacity", mode: flow.Async(0)},
		{name: "channel out of range", mode: flow.Sync(), inputs: []int{3}, outputs: []int{0}},
		{name: "negative channel", mode: flow.Sync(), inputs: []int{-1}, outputs: []int{0}},
		{name: "negative position", mode: flow.Sync(), inputs: []int{0}, outputs: []int{-2}},
		{name: "duplicate position", mode: flow.Sync(), inputs: []int{0, 1}, outputs: []int{1, 1}},
		{name: "length mismatch", mode: flow.Sync(), inputs: []int{0, 1}, outputs: []int{0}},
	}
	for _, test := range tests {
		r := flow.NewRouter(test.name, test.mode, test.inputs, test.outputs)
		_, err := r.Setup(streamContext(3, 1))
		assert.Error(t, err, test.name)
	}
}
