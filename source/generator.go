// Package source provides the nodes that bring samples into a graph:
// synthetic waveform generation, thread-safe injection from externally
// clocked producers and WAV file reading.
package source

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// Wave produces the sample value at time t, in seconds.
type Wave func(t float64) float64

// Sine is a sine wave.
func Sine(freq, amplitude float64) Wave {
	return func(t float64) float64 {
		return amplitude * math.Sin(2*math.Pi*freq*t)
	}
}

// Square is a square wave.
func Square(freq, amplitude float64) Wave {
	return func(t float64) float64 {
		if math.Mod(t*freq, 1) < 0.5 {
			return amplitude
		}
		return -amplitude
	}
}

// Noise is uniform white noise in [-amplitude, amplitude].
func Noise(amplitude float64) Wave {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(float64) float64 {
		return amplitude * (2*r.Float64() - 1)
	}
}

// Generator emits a synthetic waveform: the same wave on every channel,
// sampled at the configured rate and cut into fixed-size frames. Phase
// offsets shift individual channels along the waveform.
type Generator struct {
	label     string
	rate      float64
	frameSize int
	channels  int
	wave      Wave
	limit     int
	phases    []float64

	emitted int
	pos     int64
}

// GeneratorOption configures a generator.
type GeneratorOption func(*Generator)

// Limit stops the generator after the given number of frames. The
// generator then reports end of stream and the run drains.
func Limit(frames int) GeneratorOption {
	return func(g *Generator) {
		g.limit = frames
	}
}

// Phase shifts each channel's waveform forward by the matching offset, in
// seconds. Channels beyond the list are not shifted.
func Phase(offsets ...float64) GeneratorOption {
	return func(g *Generator) {
		g.phases = offsets
	}
}

// NewGenerator creates a generator.
func NewGenerator(label string, sampleRate float64, frameSize, channels int, wave Wave, options ...GeneratorOption) *Generator {
	g := &Generator{
		label:     label,
		rate:      sampleRate,
		frameSize: frameSize,
		channels:  channels,
		wave:      wave,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Label returns the node name.
func (g *Generator) Label() string { return g.label }

// Inputs returns the input port count.
func (g *Generator) Inputs() int { return 0 }

// Outputs returns the output port count.
func (g *Generator) Outputs() int { return 1 }

// Setup publishes the stream context.
func (g *Generator) Setup([]signal.Context) ([]signal.Context, error) {
	if g.wave == nil {
		return nil, fmt.Errorf("no waveform")
	}
	ctx := signal.Context{
		SampleRate: g.rate,
		FrameSize:  g.frameSize,
		Channels:   g.channels,
		Origin:     time.Now(),
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	g.emitted = 0
	g.pos = 0
	return []signal.Context{ctx}, nil
}

// Step emits the next frame, or reports end of stream once the limit is
// reached.
func (g *Generator) Step(t sigflow.Tick, _ []signal.Frame) ([]signal.Frame, error) {
	if g.limit > 0 && g.emitted >= g.limit {
		return nil, io.EOF
	}
	data := signal.EmptyFloat64(g.channels, g.frameSize)
	for i := 0; i < g.frameSize; i++ {
		at := float64(g.pos+int64(i)) / g.rate
		for ch := range data {
			data[ch][i] = g.wave(at + g.phase(ch))
		}
	}
	frame := signal.Frame{
		Data:      data,
		Timestamp: signal.DurationOf(g.rate, g.pos),
	}
	g.pos += int64(g.frameSize)
	g.emitted++
	return []signal.Frame{frame}, nil
}

func (g *Generator) phase(ch int) float64 {
	if ch < len(g.phases) {
		return g.phases[ch]
	}
	return 0
}
