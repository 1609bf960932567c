package signal_test

import (
	"testing"
	"time"

	"github.com/sigflow/sigflow/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameIsEmpty(t *testing.T) {
	assert.True(t, signal.Frame{}.IsEmpty())
	assert.True(t, signal.Frame{Data: signal.Float64{{}, {}}}.IsEmpty())
	assert.False(t, signal.Frame{Data: signal.Float64{{1}}}.IsEmpty())
}

func TestContextValidate(t *testing.T) {
	tests := []struct {
		name string
		ctx  signal.Context
		ok   bool
	}{
		{
			name: "complete",
			ctx:  signal.Context{SampleRate: 250, FrameSize: 10, Channels: 2},
			ok:   true,
		},
		{
			name: "labeled",
			ctx:  signal.Context{SampleRate: 250, FrameSize: 10, Channels: 2, Labels: []string{"Fp1", "Fp2"}},
			ok:   true,
		},
		{
			name: "missing rate",
			ctx:  signal.Context{FrameSize: 10, Channels: 2},
		},
		{
			name: "missing frame size",
			ctx:  signal.Context{SampleRate: 250, Channels: 2},
		},
		{
			name: "missing channels",
			ctx:  signal.Context{SampleRate: 250, FrameSize: 10},
		},
		{
			name: "label mismatch",
			ctx:  signal.Context{SampleRate: 250, FrameSize: 10, Channels: 2, Labels: []string{"Fp1"}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.ctx.Validate()
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, signal.ErrContext)
			}
		})
	}
}

func TestContextClone(t *testing.T) {
	ctx := signal.Context{
		SampleRate: 250,
		FrameSize:  10,
		Channels:   2,
		Labels:     []string{"Fp1", "Fp2"},
	}
	clone := ctx.Clone()
	clone.Labels[0] = "Cz"
	assert.Equal(t, "Fp1", ctx.Labels[0])
}

func TestContextDerived(t *testing.T) {
	ctx := signal.Context{SampleRate: 250, FrameSize: 10, Channels: 2}
	assert.Equal(t, float64(25), ctx.FrameRate())
	assert.Equal(t, 40*time.Millisecond, ctx.FramePeriod())
	assert.Equal(t, "Ch01", ctx.ChannelName(0))
	assert.Equal(t, "Ch10", ctx.ChannelName(9))

	ctx.Labels = []string{"Fp1", ""}
	assert.Equal(t, "Fp1", ctx.ChannelName(0))
	assert.Equal(t, "Ch02", ctx.ChannelName(1))
}

func TestDurationOf(t *testing.T) {
	require.Equal(t, time.Second, signal.DurationOf(250, 250))
	require.Equal(t, 20*time.Millisecond, signal.DurationOf(50, 1))
}
