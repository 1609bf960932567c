package example

import (
	"os"
	"path/filepath"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/filter"
	"github.com/sigflow/sigflow/source"
	"github.com/sigflow/sigflow/writer"
)

// Example 1:
//		Generate a sine tone
//		Smooth it with a low pass filter
//		Record the result as CSV
func one() {
	dir, err := os.MkdirTemp("", "sigflow-example")
	check(err)
	defer os.RemoveAll(dir)

	gen := source.NewGenerator("tone", 500, 50, 1,
		source.Sine(10, 1),
		source.Limit(20),
	)
	low, err := filter.LowPass(4, 40, 500)
	check(err)
	smooth := filter.New("smooth", low)
	rec := writer.New("rec", writer.NewCSV(filepath.Join(dir, "tone.csv")))

	g := sigflow.New(sigflow.WithName("example1"))
	check(g.Add(gen))
	check(g.Add(smooth))
	check(g.Add(rec))
	check(g.Connect(gen, 0, smooth, 0))
	check(g.Connect(smooth, 0, rec, 0))
	check(sigflow.Wait(g.Run()))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
