package mock_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/mock"
	"github.com/sigflow/sigflow/signal"
)

func TestSource(t *testing.T) {
	s := &mock.Source{
		Name:       "src",
		SampleRate: 100,
		FrameSize:  5,
		Channels:   2,
		Value:      0.5,
		Limit:      2,
	}
	out, err := s.Setup(nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out[0].SampleRate)

	frames, err := s.Step(sigflow.Tick{}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{0.5, 0.5, 0.5, 0.5, 0.5}, {0.5, 0.5, 0.5, 0.5, 0.5}}, frames[0].Data)

	_, err = s.Step(sigflow.Tick{Index: 1}, nil)
	require.NoError(t, err)
	_, err = s.Step(sigflow.Tick{Index: 2}, nil)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, s.Steps)
}

func TestTransform(t *testing.T) {
	tr := &mock.Transform{Name: "gain", Scale: 2}
	_, err := tr.Setup([]signal.Context{{SampleRate: 100, FrameSize: 2, Channels: 1}})
	require.NoError(t, err)

	frames, err := tr.Step(sigflow.Tick{}, []signal.Frame{{Data: signal.Float64{{1, -2}}}})
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{2, -4}}, frames[0].Data)
	assert.Equal(t, int64(2), tr.Samples)

	tr = &mock.Transform{Name: "broken", FailAt: 1}
	_, err = tr.Setup([]signal.Context{{SampleRate: 100, FrameSize: 2, Channels: 1}})
	require.NoError(t, err)
	_, err = tr.Step(sigflow.Tick{}, []signal.Frame{{Data: signal.Float64{{1}}}})
	assert.ErrorIs(t, err, mock.ErrFault)
}

func TestSink(t *testing.T) {
	sk := &mock.Sink{Name: "rec"}
	_, err := sk.Setup([]signal.Context{{SampleRate: 100, FrameSize: 2, Channels: 1}})
	require.NoError(t, err)
	require.NoError(t, sk.Start())

	_, err = sk.Step(sigflow.Tick{Index: 3}, []signal.Frame{{Data: signal.Float64{{1, 2}}}})
	require.NoError(t, err)
	_, err = sk.Step(sigflow.Tick{Index: 4}, []signal.Frame{{}})
	require.NoError(t, err)
	_, err = sk.Step(sigflow.Tick{Index: 5}, []signal.Frame{{Data: signal.Float64{{3}}}})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, sk.Values())
	assert.Equal(t, []uint64{3, 5}, sk.Ticks)
	require.NoError(t, sk.Flush())
	assert.Equal(t, 1, sk.Flushed)
}
