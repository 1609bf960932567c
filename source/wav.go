package source

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// WAV reads a PCM WAV file frame by frame. Rate, channel count and bit
// depth come from the file header; the last frame may be shorter than the
// configured frame size.
type WAV struct {
	label     string
	frameSize int

	file     *os.File
	decoder  *wav.Decoder
	intBuf   *audio.IntBuffer
	rate     float64
	channels int
	depth    signal.BitDepth
	pos      int64
}

// NewWAV opens the file and reads its header.
func NewWAV(label, path string, frameSize int) (*WAV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}
	depth := signal.BitDepth(d.BitDepth)
	switch depth {
	case signal.BitDepth8, signal.BitDepth16, signal.BitDepth32:
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported bit depth %d", d.BitDepth)
	}
	return &WAV{
		label:     label,
		frameSize: frameSize,
		file:      f,
		decoder:   d,
		rate:      float64(d.SampleRate),
		channels:  int(d.NumChans),
		depth:     depth,
	}, nil
}

// Label returns the node name.
func (w *WAV) Label() string { return w.label }

// Inputs returns the input port count.
func (w *WAV) Inputs() int { return 0 }

// Outputs returns the output port count.
func (w *WAV) Outputs() int { return 1 }

// Setup publishes the stream context read from the header.
func (w *WAV) Setup([]signal.Context) ([]signal.Context, error) {
	ctx := signal.Context{
		SampleRate: w.rate,
		FrameSize:  w.frameSize,
		Channels:   w.channels,
		Origin:     time.Now(),
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	w.intBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.channels,
			SampleRate:  int(w.rate),
		},
		Data:           make([]int, w.frameSize*w.channels),
		SourceBitDepth: int(w.depth),
	}
	w.pos = 0
	return []signal.Context{ctx}, nil
}

// Step reads the next frame from the file.
func (w *WAV) Step(t sigflow.Tick, _ []signal.Frame) ([]signal.Frame, error) {
	read, err := w.decoder.PCMBuffer(w.intBuf)
	if err != nil {
		return nil, err
	}
	if read == 0 {
		return nil, io.EOF
	}
	data := signal.InterInt{
		Data:        w.intBuf.Data[:read],
		NumChannels: w.channels,
		BitDepth:    w.depth,
	}.AsFloat64()
	frame := signal.Frame{
		Data:      data,
		Timestamp: signal.DurationOf(w.rate, w.pos),
	}
	w.pos += int64(data.Size())
	return []signal.Frame{frame}, nil
}

// Flush closes the file.
func (w *WAV) Flush() error {
	return w.file.Close()
}
