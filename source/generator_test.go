package source_test

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/source"
)

func TestGeneratorSine(t *testing.T) {
	g := source.NewGenerator("sine", 100, 10, 2, source.Sine(5, 1))
	out, err := g.Setup(nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out[0].SampleRate)
	assert.Equal(t, 10, out[0].FrameSize)
	assert.Equal(t, 2, out[0].Channels)

	frames, err := g.Step(sigflow.Tick{}, nil)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, time.Duration(0), frames[0].Timestamp)
	for i := 0; i < 10; i++ {
		want := math.Sin(2 * math.Pi * 5 * float64(i) / 100)
		assert.InDelta(t, want, frames[0].Data[0][i], 1e-15)
		assert.Equal(t, frames[0].Data[0][i], frames[0].Data[1][i])
	}

	// the second frame continues the waveform
	frames, err = g.Step(sigflow.Tick{Index: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, frames[0].Timestamp)
	assert.InDelta(t, math.Sin(2*math.Pi*5*0.1), frames[0].Data[0][0], 1e-15)
}

func TestGeneratorPhase(t *testing.T) {
	// a quarter period shift turns the sine into a cosine
	g := source.NewGenerator("shifted", 100, 10, 2, source.Sine(5, 1), source.Phase(0, 0.05))
	_, err := g.Setup(nil)
	require.NoError(t, err)

	frames, err := g.Step(sigflow.Tick{}, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		at := float64(i) / 100
		assert.InDelta(t, math.Sin(2*math.Pi*5*at), frames[0].Data[0][i], 1e-12)
		assert.InDelta(t, math.Cos(2*math.Pi*5*at), frames[0].Data[1][i], 1e-12)
	}
}

func TestGeneratorLimit(t *testing.T) {
	g := source.NewGenerator("limited", 100, 5, 1, source.Sine(2, 1), source.Limit(3))
	_, err := g.Setup(nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		frames, err := g.Step(sigflow.Tick{Index: uint64(i)}, nil)
		require.NoError(t, err)
		require.Len(t, frames, 1)
	}
	_, err = g.Step(sigflow.Tick{Index: 3}, nil)
	assert.Equal(t, io.EOF, err)
}

func TestGeneratorValidation(t *testing.T) {
	g := source.NewGenerator("norate", 0, 10, 1, source.Sine(1, 1))
	_, err := g.Setup(nil)
	assert.Error(t, err)

	g = source.NewGenerator("nowave", 100, 10, 1, nil)
	_, err = g.Setup(nil)
	assert.Error(t, err)
}

func TestSquare(t *testing.T) {
	square := source.Square(1, 2)
	assert.Equal(t, 2.0, square(0))
	assert.Equal(t, 2.0, square(0.25))
	assert.Equal(t, -2.0, square(0.5))
	assert.Equal(t, -2.0, square(0.75))
	assert.Equal(t, 2.0, square(1))
}

func TestNoise(t *testing.T) {
	noise := source.Noise(0.5)
	constant := true
	first := noise(0)
	for i := 0; i < 100; i++ {
		v := noise(0)
		assert.LessOrEqual(t, math.Abs(v), 0.5)
		if v != first {
			constant = false
		}
	}
	assert.False(t, constant)
}
