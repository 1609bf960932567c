package example

import (
	"os"
	"path/filepath"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/flow"
	"github.com/sigflow/sigflow/source"
	"github.com/sigflow/sigflow/writer"
)

// Example 3:
//		Generate a square pulse train
//		Capture a window around every rising edge
//		Record the captured windows as CSV
func three() {
	dir, err := os.MkdirTemp("", "sigflow-example")
	check(err)
	defer os.RemoveAll(dir)

	gen := source.NewGenerator("pulse", 100, 10, 1,
		source.Square(2, 1),
		source.Limit(30),
	)
	spike := flow.NewTrigger("spike", 3, 5, flow.Rising(0, 0.5))
	rec := writer.New("rec", writer.NewCSV(filepath.Join(dir, "spikes.csv")))

	g := sigflow.New(sigflow.WithName("example3"))
	check(g.Add(gen))
	check(g.Add(spike))
	check(g.Add(rec))
	check(g.Connect(gen, 0, spike, 0))
	check(g.Connect(spike, 0, rec, 0))
	check(sigflow.Wait(g.Run()))
}
