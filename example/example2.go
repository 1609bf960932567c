package example

import (
	"os"
	"path/filepath"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/equation"
	"github.com/sigflow/sigflow/signal"
	"github.com/sigflow/sigflow/source"
	"github.com/sigflow/sigflow/writer"
)

// Example 2:
//		Generate a two channel tone
//		Mix it down to mono with a matrix
// 		Save the result as a .wav file
func two() {
	dir, err := os.MkdirTemp("", "sigflow-example")
	check(err)
	defer os.RemoveAll(dir)

	gen := source.NewGenerator("tone", 44100, 512, 2,
		source.Sine(440, 0.5),
		source.Limit(40),
	)
	mix := equation.NewMatrix("mix", [][]float64{{0.5, 0.5}})
	tape := writer.New("tape", writer.NewWAV(
		filepath.Join(dir, "tone.wav"),
		signal.BitDepth16,
	))

	g := sigflow.New(sigflow.WithName("example2"))
	check(g.Add(gen))
	check(g.Add(mix))
	check(g.Add(tape))
	check(g.Connect(gen, 0, mix, 0))
	check(g.Connect(mix, 0, tape, 0))
	check(sigflow.Wait(g.Run()))
}
