package writer

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/sigflow/sigflow/signal"
)

// WAV serializes frames as a PCM WAV file at the given bit depth. Rate
// and channel count come from the stream context.
type WAV struct {
	path  string
	depth signal.BitDepth

	file   *os.File
	enc    *wav.Encoder
	format *audio.Format
}

// NewWAV creates a WAV encoder writing to path.
func NewWAV(path string, depth signal.BitDepth) *WAV {
	return &WAV{
		path:  path,
		depth: depth,
	}
}

// Begin creates the file and the PCM encoder.
func (w *WAV) Begin(ctx signal.Context) error {
	switch w.depth {
	case signal.BitDepth8, signal.BitDepth16, signal.BitDepth32:
	default:
		return fmt.Errorf("unsupported bit depth %d", w.depth)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	w.file = f
	w.format = &audio.Format{
		NumChannels: ctx.Channels,
		SampleRate:  int(ctx.SampleRate),
	}
	w.enc = wav.NewEncoder(f, int(ctx.SampleRate), int(w.depth), ctx.Channels, 1)
	return nil
}

// Encode writes one frame of interleaved PCM samples.
func (w *WAV) Encode(f signal.Frame) error {
	return w.enc.Write(&audio.IntBuffer{
		Format:         w.format,
		Data:           f.Data.AsInterInt(w.depth),
		SourceBitDepth: int(w.depth),
	})
}

// Close finalizes the WAV headers and closes the file.
func (w *WAV) Close() error {
	err := w.enc.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}
