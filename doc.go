/*
Package sigflow builds and executes dataflow graphs for biosignal
processing.

Concept

A graph is a set of named nodes connected by directed edges. Two things
travel along every edge: a stream context, established once during setup,
and frames, one block of samples per tick. Nodes declare input and output
ports; sources have no inputs, sinks have no outputs, everything else
transforms frames in between.

	g := sigflow.New()
	g.Add(src, dec, csv)
	g.Connect(src, 0, dec, 0)
	g.Connect(dec, 0, csv, 0)
	err := sigflow.Wait(g.Run())

Scheduling

One goroutine owns the timeline. The base tick rate is the highest source
frame rate; slower sources are stepped on aligned ticks only. Within a
tick, nodes execute sequentially in a fixed topological order computed at
validation time, so no two nodes ever touch shared state concurrently. A
node is stepped when fresh frames sit on its input ports; rate-changing
nodes simply emit less (or more dense) data and downstream cadence follows
the data.

Ticks advance as fast as possible by default. WithClock(RealTime()) paces
them against the wall clock with absolute deadlines, which keeps long runs
free of accumulated drift.

Lifecycle

Run validates the graph, establishes contexts and starts the tick loop.
Stop is safe from any goroutine and takes effect at the next tick
boundary: finalizer nodes emit their tails, writers flush, and the error
channel returned by Run delivers the terminal error. Processing faults
stop the run and carry the failing node and tick; writer failures degrade
the sink and surface through Warnings instead.
*/
package sigflow
