package source_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
	"github.com/sigflow/sigflow/source"
)

func injectorContext() signal.Context {
	return signal.Context{
		SampleRate: 250,
		FrameSize:  1,
		Channels:   1,
	}
}

func valueFrame(ts time.Duration, v float64) signal.Frame {
	return signal.Frame{
		Data:      signal.Float64{{v}},
		Timestamp: ts,
	}
}

func TestInjector(t *testing.T) {
	inj := source.NewInjector("device", injectorContext(), 4)
	out, err := inj.Setup(nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 250.0, out[0].SampleRate)

	// nothing arrived yet, which is not a fault
	_, err = inj.Step(sigflow.Tick{}, nil)
	assert.ErrorIs(t, err, sigflow.ErrNoData)

	require.NoError(t, inj.Push(valueFrame(0, 1)))
	require.NoError(t, inj.Push(valueFrame(4*time.Millisecond, 2)))

	frames, err := inj.Step(sigflow.Tick{Index: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{1}}, frames[0].Data)
	frames, err = inj.Step(sigflow.Tick{Index: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{2}}, frames[0].Data)
}

func TestInjectorClose(t *testing.T) {
	inj := source.NewInjector("device", injectorContext(), 4)
	_, err := inj.Setup(nil)
	require.NoError(t, err)

	require.NoError(t, inj.Push(valueFrame(0, 1)))
	inj.Close()
	assert.Error(t, inj.Push(valueFrame(0, 2)))

	// buffered frames drain before the end of stream
	frames, err := inj.Step(sigflow.Tick{}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{1}}, frames[0].Data)
	_, err = inj.Step(sigflow.Tick{Index: 1}, nil)
	assert.Equal(t, io.EOF, err)
}

func TestInjectorOverrun(t *testing.T) {
	inj := source.NewInjector("slow", injectorContext(), 2)
	_, err := inj.Setup(nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, inj.Push(valueFrame(0, float64(i))))
	}

	// the three oldest frames were dropped
	frames, err := inj.Step(sigflow.Tick{}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{3}}, frames[0].Data)
	frames, err = inj.Step(sigflow.Tick{Index: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, signal.Float64{{4}}, frames[0].Data)
	_, err = inj.Step(sigflow.Tick{Index: 2}, nil)
	assert.ErrorIs(t, err, sigflow.ErrNoData)
}

func TestInjectorValidation(t *testing.T) {
	inj := source.NewInjector("bad", signal.Context{}, 4)
	_, err := inj.Setup(nil)
	assert.ErrorIs(t, err, signal.ErrContext)
}
