package sigflow

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/sigflow/sigflow/log"
	"github.com/sigflow/sigflow/metric"
	"github.com/sigflow/sigflow/signal"
)

// Graph assembles nodes and edges and executes them tick-by-tick. Use New
// to create one, Add and Connect to build the topology, Run to execute.
// The zero value is not usable.
type Graph struct {
	name  string
	uid   string
	log   *logrus.Logger
	clock Clock

	nodes  []*nodeInfo
	byNode map[Node]int
	order  []int

	tickRate    float64
	liveSources int

	cancel   chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	state    state
	waiters  []target
	warnings []error
}

// nodeInfo carries the per-node bookkeeping owned by the scheduler.
type nodeInfo struct {
	node      Node
	label     string
	uid       string
	ins       []*edge   // by input port, nil until connected
	outs      [][]*edge // by output port, one entry per consumer
	inbuf     []signal.Frame
	source    bool
	divisor   uint64
	exhausted bool
	selfTimed SelfTimed
	meter     metric.ResetFunc
	measure   metric.MeasureFunc
}

// edge connects an output port to an input port. The context is published
// during setup; the frame slot holds the value of the current tick.
type edge struct {
	from, to         int
	fromPort, toPort int
	ctx              signal.Context
	frame            signal.Frame
	fresh            bool
}

// New creates an empty graph.
func New(options ...Option) *Graph {
	g := &Graph{
		name:   "graph",
		uid:    newUID(),
		log:    log.GetLogger(),
		clock:  Offline(),
		byNode: make(map[Node]int),
		state:  ready,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Add registers nodes with the graph. Each node gets a run-unique id used
// in logs and metrics next to its label.
func (g *Graph) Add(nodes ...Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.state.(idleReady); !ok {
		return ErrInvalidState
	}
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("nil node")
		}
		if _, ok := g.byNode[n]; ok {
			return fmt.Errorf("node %s added twice", labelOf(n))
		}
		uid := newUID()
		info := &nodeInfo{
			node:   n,
			label:  labelOf(n),
			uid:    uid,
			ins:    make([]*edge, n.Inputs()),
			outs:   make([][]*edge, n.Outputs()),
			source: n.Inputs() == 0,
		}
		if info.label == "" {
			info.label = uid
		}
		g.byNode[n] = len(g.nodes)
		g.nodes = append(g.nodes, info)
	}
	return nil
}

// Connect wires an output port of one node to an input port of another.
// Every input port accepts exactly one producer; output ports fan out to
// any number of consumers.
func (g *Graph) Connect(from Node, fromPort int, to Node, toPort int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.state.(idleReady); !ok {
		return ErrInvalidState
	}
	fi, ok := g.byNode[from]
	if !ok {
		return fmt.Errorf("node %s not added", labelOf(from))
	}
	ti, ok := g.byNode[to]
	if !ok {
		return fmt.Errorf("node %s not added", labelOf(to))
	}
	fn, tn := g.nodes[fi], g.nodes[ti]
	if fromPort < 0 || fromPort >= len(fn.outs) {
		return fmt.Errorf("node %s has no output port %d", fn.label, fromPort)
	}
	if toPort < 0 || toPort >= len(tn.ins) {
		return fmt.Errorf("node %s has no input port %d", tn.label, toPort)
	}
	if tn.ins[toPort] != nil {
		return fmt.Errorf("input port %d of %s already connected", toPort, tn.label)
	}
	e := &edge{
		from:     fi,
		to:       ti,
		fromPort: fromPort,
		toPort:   toPort,
	}
	fn.outs[fromPort] = append(fn.outs[fromPort], e)
	tn.ins[toPort] = e
	return nil
}

// Warnings returns non-fatal conditions collected during the run, such as
// degraded sinks. It is safe to call after Run's error channel delivered.
func (g *Graph) Warnings() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	warnings := make([]error, len(g.warnings))
	copy(warnings, g.warnings)
	return warnings
}

// TickRate returns the base tick rate established at validation. It is
// zero before Run.
func (g *Graph) TickRate() float64 {
	return g.tickRate
}

func labelOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.Label()
}

// newUID returns a new unique id.
func newUID() string {
	return xid.New().String()
}
