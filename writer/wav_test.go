package writer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigflow/sigflow/signal"
	"github.com/sigflow/sigflow/writer"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	enc := writer.NewWAV(path, signal.BitDepth16)
	ctx := signal.Context{
		SampleRate: 100,
		FrameSize:  4,
		Channels:   2,
	}
	require.NoError(t, enc.Begin(ctx))
	data := signal.Float64{
		{0, 0.25, -0.25, 0.5},
		{1, -1, 0.75, -0.75},
	}
	require.NoError(t, enc.Encode(signal.Frame{Data: data}))
	require.NoError(t, enc.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 100, buf.Format.SampleRate)
	assert.Equal(t, data.AsInterInt(signal.BitDepth16), buf.Data)
}

func TestWAVUnsupportedDepth(t *testing.T) {
	enc := writer.NewWAV(filepath.Join(t.TempDir(), "out.wav"), signal.BitDepth(24))
	err := enc.Begin(signal.Context{
		SampleRate: 100,
		FrameSize:  1,
		Channels:   1,
	})
	assert.Error(t, err)
}
